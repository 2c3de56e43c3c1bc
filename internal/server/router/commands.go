package router

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Command keywords. English forms are matched case-insensitively; the
// Chinese aliases are kept for users of the original deployment.
var (
	cmdQueryID     = []string{"query id", "查询 ID"}
	cmdHelp        = []string{"help", "帮助"}
	cmdIssueCode   = []string{"issue code", "生成验证码"}
	cmdAddAdmin    = []string{"add-admin", "新增管理员"}
	cmdRemoveAdmin = []string{"remove-admin", "删除管理员"}
	cmdUnlock      = []string{"unlock", "解封"}
)

// isCommand reports whether text is exactly one of names.
func isCommand(text string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(text, n) {
			return true
		}
	}
	return false
}

// matchPrefix reports whether text starts with one of names and returns
// the trimmed remainder. An ASCII keyword must be followed by whitespace or
// end the text; CJK keywords may be followed by the argument directly.
func matchPrefix(text string, names []string) (string, bool) {
	for _, n := range names {
		if len(text) < len(n) || !strings.EqualFold(text[:len(n)], n) {
			continue
		}
		rest := text[len(n):]
		if rest != "" && isASCII(n) {
			r, _ := utf8.DecodeRuneInString(rest)
			if !unicode.IsSpace(r) {
				continue
			}
		}
		return strings.TrimSpace(rest), true
	}
	return "", false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
