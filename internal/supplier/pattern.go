package supplier

import "regexp"

type CodePattern struct {
	re *regexp.Regexp
}

func CompilePattern(expr string) CodePattern {
	if expr == "" {
		return CodePattern{}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return CodePattern{}
	}
	return CodePattern{re: re}
}

func (p CodePattern) Valid() bool { return p.re != nil }

func (p CodePattern) MatchString(s string) bool {
	return p.re != nil && p.re.MatchString(s)
}

func (p CodePattern) FindAllIndex(s string) [][]int {
	if p.re == nil {
		return nil
	}
	return p.re.FindAllStringIndex(s, -1)
}

func (p CodePattern) FindString(s string) string {
	if p.re == nil {
		return ""
	}
	return p.re.FindString(s)
}
