package shopping

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var unicodeFractions = map[rune]string{
	'½': "1/2",
	'⅓': "1/3",
	'⅔': "2/3",
	'¼': "1/4",
	'¾': "3/4",
	'⅕': "1/5",
	'⅖': "2/5",
	'⅗': "3/5",
	'⅘': "4/5",
	'⅙': "1/6",
	'⅚': "5/6",
	'⅛': "1/8",
	'⅜': "3/8",
	'⅝': "5/8",
	'⅞': "7/8",
}

// 句尾代表「適量」的片語
var tasteSuffixes = []string{"to taste", "as needed", "as desired"}

// Parser 將單行食材文字解析為 ParsedIngredient
type Parser struct {
	catalog *Catalog
}

// NewParser 創建解析器，catalog 為 nil 時使用內建詞彙表
func NewParser(catalog *Catalog) *Parser {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Parser{catalog: catalog}
}

// Parse 解析一行食材，永遠成功；無法辨識時整行作為名稱、數量為 1
func (p *Parser) Parse(line string) ParsedIngredient {
	result := ParsedIngredient{Quantity: 1, RawText: line}

	text := normalizeSpaces(expandFractions(line))
	tokens := splitAttachedUnit(strings.Fields(text), p.catalog)
	if len(tokens) == 0 {
		return result
	}

	var descriptors []string
	quantity, n := parseQuantity(tokens)
	unit := ""
	rest := tokens[n:]

	switch {
	case n > 0:
		var paren string
		rest, paren = takeParenthetical(rest)
		if paren != "" {
			descriptors = append(descriptors, paren)
		}
		if u, m := p.matchUnit(rest); m > 0 {
			unit, rest = u, rest[m:]
		}
	case len(tokens) > 1 && isArticle(tokens[0]):
		// a / an 視為數量 1，讓 "an avocado" 與 "1 avocado" 合併
		quantity, rest = 1, tokens[1:]
		if u, m := p.matchUnit(rest); m > 0 {
			unit, rest = u, rest[m:]
		}
	}
	if len(rest) > 0 && strings.EqualFold(rest[0], "of") {
		rest = rest[1:]
	}

	display, extra, toTaste := p.splitName(strings.Join(rest, " "))
	if display == "" {
		// 只有數量或單位，整行當作名稱
		result.DisplayName = strings.Trim(text, " .,;:")
		result.Name = p.catalog.Key(result.DisplayName)
		return result
	}
	descriptors = append(descriptors, extra...)

	if quantity <= 0 {
		quantity = 1
	}
	if toTaste && unit == "" {
		unit = UnitToTaste
	}

	result.Quantity = quantity
	result.Unit = unit
	result.DisplayName = display
	result.Name = p.catalog.Key(display)
	result.Descriptor = strings.Join(descriptors, ", ")
	return result
}

// matchUnit 嘗試以最長的單位別名比對開頭的詞，後面必須還有名稱
func (p *Parser) matchUnit(tokens []string) (string, int) {
	for w := min(p.catalog.maxUnitWords, len(tokens)-1); w >= 1; w-- {
		if u, ok := p.catalog.Unit(strings.Join(tokens[:w], " ")); ok {
			return u, w
		}
	}
	return "", 0
}

// splitName 拆出名稱、描述詞與「適量」標記
func (p *Parser) splitName(s string) (string, []string, bool) {
	var descriptors []string
	toTaste := false

	head, tail, _ := strings.Cut(s, ",")
	tail = strings.TrimSpace(tail)
	if tail != "" {
		if ok, remaining := stripTaste(tail); ok {
			toTaste = true
			tail = remaining
		}
	}
	if ok, remaining := stripTaste(head); ok {
		toTaste = true
		head = remaining
	}

	head, parens := removeParens(head)

	words := strings.Fields(head)
	kept := make([]string, 0, len(words))
	var dropped []string
	for _, w := range words {
		if p.catalog.IsDescriptor(strings.Trim(w, ".,;:")) {
			dropped = append(dropped, w)
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		kept, dropped = words, nil
	}

	if len(dropped) > 0 {
		descriptors = append(descriptors, strings.Join(dropped, " "))
	}
	descriptors = append(descriptors, parens...)
	if tail != "" {
		descriptors = append(descriptors, tail)
	}

	return strings.Trim(strings.Join(kept, " "), " .,;:"), descriptors, toTaste
}

// parseQuantity 解析開頭的數量，回傳數值與使用的 token 數
func parseQuantity(tokens []string) (float64, int) {
	qty, ok := parseNumber(tokens[0])
	if !ok {
		return 0, 0
	}
	n := 1

	// 帶分數 "1 1/2"
	if len(tokens) > n && isWhole(tokens[0]) {
		if frac, ok := parseFraction(tokens[n]); ok && frac < 1 {
			qty += frac
			n++
		}
	}

	// 範圍 "2 - 3"、"2 to 3"、"2 or 3"，取下限
	if len(tokens) > n+1 && isRangeWord(tokens[n]) {
		if _, ok := parseNumber(tokens[n+1]); ok {
			n += 2
			if len(tokens) > n && isWhole(tokens[n-1]) {
				if frac, ok := parseFraction(tokens[n]); ok && frac < 1 {
					n++
				}
			}
		}
	}

	return qty, n
}

// parseNumber 解析整數、小數、分數與範圍 token
func parseNumber(tok string) (float64, bool) {
	tok = strings.TrimSuffix(tok, ",")
	if i := strings.IndexAny(tok, "-–"); i > 0 {
		lo, ok := parseSimpleNumber(tok[:i])
		if !ok {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(tok[i:])
		hiText := tok[i+size:]
		hi, ok := parseSimpleNumber(hiText)
		if !ok {
			return 0, false
		}
		// "1-1/2" 為帶分數
		if strings.Contains(hiText, "/") && hi < 1 && isWhole(tok[:i]) {
			return lo + hi, true
		}
		return lo, true
	}
	return parseSimpleNumber(tok)
}

func parseSimpleNumber(tok string) (float64, bool) {
	if strings.Contains(tok, "/") {
		return parseFraction(tok)
	}
	if tok == "" || tok == "." || strings.Count(tok, ".") > 1 {
		return 0, false
	}
	for _, r := range tok {
		if r != '.' && !isDigit(r) {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFraction(tok string) (float64, bool) {
	num, den, ok := strings.Cut(tok, "/")
	if !ok || !isWhole(num) || !isWhole(den) {
		return 0, false
	}
	a, _ := strconv.Atoi(num)
	b, _ := strconv.Atoi(den)
	if b == 0 {
		return 0, false
	}
	return float64(a) / float64(b), true
}

func isWhole(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isRangeWord(tok string) bool {
	switch strings.ToLower(tok) {
	case "-", "–", "to", "or":
		return true
	}
	return false
}

func isArticle(tok string) bool {
	switch strings.ToLower(tok) {
	case "a", "an":
		return true
	}
	return false
}

// expandFractions 將 ½ 等字元展開為 "1/2"，並統一分數斜線
func expandFractions(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if f, ok := unicodeFractions[r]; ok {
			b.WriteByte(' ')
			b.WriteString(f)
			b.WriteByte(' ')
			continue
		}
		if r == '⁄' {
			b.WriteByte('/')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitAttachedUnit 將 "200g" 拆為 "200" 與 "g"
func splitAttachedUnit(tokens []string, catalog *Catalog) []string {
	if len(tokens) == 0 {
		return tokens
	}
	first := tokens[0]
	i := strings.IndexFunc(first, func(r rune) bool {
		return !isDigit(r) && r != '.' && r != '/'
	})
	if i <= 0 {
		return tokens
	}
	if r, _ := utf8.DecodeRuneInString(first[i:]); !unicode.IsLetter(r) {
		return tokens
	}
	if _, ok := parseSimpleNumber(first[:i]); !ok {
		return tokens
	}
	if _, ok := catalog.Unit(first[i:]); !ok {
		return tokens
	}
	out := make([]string, 0, len(tokens)+1)
	out = append(out, first[:i], first[i:])
	return append(out, tokens[1:]...)
}

// takeParenthetical 取出數量後緊接的括號內容，例如 "(14 oz)"
func takeParenthetical(tokens []string) ([]string, string) {
	if len(tokens) == 0 || !strings.HasPrefix(tokens[0], "(") {
		return tokens, ""
	}
	for j, tok := range tokens {
		if strings.Contains(tok, ")") {
			content := strings.Trim(strings.Join(tokens[:j+1], " "), "() ")
			return tokens[j+1:], content
		}
	}
	return tokens, ""
}

// removeParens 移除文字中的括號片段並回傳其內容
func removeParens(s string) (string, []string) {
	var parens []string
	for {
		open := strings.Index(s, "(")
		if open < 0 {
			break
		}
		closeIdx := strings.Index(s[open:], ")")
		if closeIdx < 0 {
			break
		}
		closeIdx += open
		if inner := strings.TrimSpace(s[open+1 : closeIdx]); inner != "" {
			parens = append(parens, inner)
		}
		s = s[:open] + " " + s[closeIdx+1:]
	}
	return normalizeSpaces(s), parens
}

// stripTaste 去除句尾的 "to taste" 類片語
func stripTaste(s string) (bool, string) {
	trimmed := strings.TrimSpace(s)
	for _, suffix := range tasteSuffixes {
		if len(trimmed) < len(suffix) {
			continue
		}
		cut := len(trimmed) - len(suffix)
		if !strings.EqualFold(trimmed[cut:], suffix) {
			continue
		}
		if cut == 0 {
			return true, ""
		}
		if trimmed[cut-1] == ' ' {
			return true, strings.TrimSpace(trimmed[:cut])
		}
	}
	return false, s
}
