package mealsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultMaxRecipeBytes 食譜網頁的預設大小上限
const DefaultMaxRecipeBytes int64 = 5 << 20

// ErrBlockedAddress 目標位址不是公開網路位址
var ErrBlockedAddress = errors.New("address is not publicly routable")

var errRecipeTooLarge = errors.New("recipe page too large")

// carrier-grade NAT 100.64.0.0/10
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// AddressGuard 在連線前檢查解析後的 IP，回傳錯誤即拒絕連線
type AddressGuard func(ip net.IP) error

// PublicAddressOnly 拒絕迴環、私有、鏈路本地、未指定與群播位址
func PublicAddressOnly(ip net.IP) error {
	switch {
	case ip == nil,
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}

// ImporterOption 匯入器選項
type ImporterOption func(*Importer)

// WithAddressGuard 替換連線位址檢查，測試連到本機伺服器時使用
func WithAddressGuard(guard AddressGuard) ImporterOption {
	return func(i *Importer) {
		i.guard = guard
	}
}

// WithMaxBodyBytes 設定網頁大小上限
func WithMaxBodyBytes(n int64) ImporterOption {
	return func(i *Importer) {
		if n > 0 {
			i.maxBytes = n
		}
	}
}

// Importer 從食譜網頁匯入餐點
type Importer struct {
	client   *resty.Client
	guard    AddressGuard
	maxBytes int64
}

// NewImporter 創建食譜匯入器，不帶上游服務的認證資訊
//
// 位址檢查在撥號時執行，轉址後的連線同樣受限。
func NewImporter(timeout time.Duration, opts ...ImporterOption) *Importer {
	i := &Importer{
		guard:    PublicAddressOnly,
		maxBytes: DefaultMaxRecipeBytes,
	}
	for _, opt := range opts {
		opt(i)
	}

	i.client = resty.New().
		SetTransport(i.transport()).
		SetTimeout(timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("User-Agent", "meal-planner/1.0 (+recipe-import)").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetDoNotParseResponse(true)
	return i
}

func (i *Importer) transport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			return i.guard(net.ParseIP(host))
		},
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	// 不走環境變數中的代理，否則檢查到的是代理位址
	tr.Proxy = nil
	tr.DialContext = dialer.DialContext
	return tr
}

// ImportRecipe 下載食譜網頁並取出標題與食材
func (i *Importer) ImportRecipe(ctx context.Context, rawURL string) (*shopping.Meal, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, common.NewValidationError("url must be an absolute http(s) url")
	}

	start := time.Now()
	resp, err := i.client.R().SetContext(ctx).Get(u.String())
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		if errors.Is(err, ErrBlockedAddress) {
			common.LogWarn("拒絕匯入非公開位址", zap.String("host", u.Host), zap.Error(err))
			return nil, common.ErrInvalidRequest.Wrap(err)
		}
		return nil, common.ErrRecipeImportFailure.Wrap(fmt.Errorf("failed to fetch %s: %w", u.Host, err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrRecipeImportFailure.Wrap(fmt.Errorf("recipe page returned status %d", resp.StatusCode()))
	}

	body, err := i.readBody(resp.RawBody())
	if err != nil {
		return nil, common.ErrRecipeImportFailure.Wrap(err)
	}

	meal, err := ExtractRecipe(bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, ErrNoIngredients) {
			return nil, common.ErrRecipeImportFailure.Wrap(err)
		}
		return nil, common.ErrRecipeImportFailure.Wrap(fmt.Errorf("failed to read recipe page: %w", err))
	}
	meal.ID = u.String()

	common.LogInfo("食譜已匯入",
		zap.String("host", u.Host),
		zap.String("title", meal.Name),
		zap.Int("ingredients", len(meal.Ingredients)),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)
	return meal, nil
}

// readBody 讀取網頁內容，超過上限即失敗
func (i *Importer) readBody(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r, i.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe page: %w", err)
	}
	if int64(len(body)) > i.maxBytes {
		return nil, fmt.Errorf("%w: over %d bytes", errRecipeTooLarge, i.maxBytes)
	}
	return body, nil
}
