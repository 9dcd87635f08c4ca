package rules

import (
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single replace pass over one input.
const matchTimeout = 2 * time.Second

const (
	// restOfLine stops before any line terminator, like "." in JavaScript.
	restOfLine = `[^\r\n\u2028\u2029]*`
	// leadingSpace lets a line comment take the indentation before it.
	leadingSpace = `[ \t]*`

	cBlock = `/\*[\s\S]*?\*/`
)

// Default is the built-in rule table. It is validated at start-up and must
// not be modified.
var Default = Table{
	"javascript": RuleSet(
		block(cBlock),
		line(`//`),
	),
	"java":   AliasOf("javascript"),
	"c":      AliasOf("javascript"),
	"cpp":    AliasOf("javascript"),
	"csharp": AliasOf("javascript"),
	"swift":  AliasOf("javascript"),
	"kotlin": AliasOf("javascript"),
	"go":     AliasOf("javascript"),
	"rust":   AliasOf("javascript"),
	"scala":  AliasOf("javascript"),

	"python": RuleSet(line(`#`)),
	"perl":   RuleSet(line(`#`)),
	"php": RuleSet(
		block(cBlock),
		line(`(?://|#)`),
	),
	// =begin and =end open their lines and may carry trailing text.
	"ruby": RuleSet(
		line(`#`),
		block(`^=begin(?:[ \t][^\r\n]*)?\r?$[\s\S]*?^=end(?:[ \t][^\r\n]*)?\r?$`, regexp2.Multiline),
	),
	"html": RuleSet(block(`<!--[\s\S]*?-->`)),
	"css":  RuleSet(block(cBlock)),
	"sql": RuleSet(
		line(`--`),
		block(cBlock),
	),
	"lua": RuleSet(
		line(`--(?!\[\[|\]\])`),
		block(`--\[\[[\s\S]*?\]\]`),
	),
	"powershell": RuleSet(
		line(`#`),
		block(`<#[\s\S]*?#>`),
	),
	"vbnet": RuleSet(
		line(`'`),
		line(`\bREM\b`, regexp2.IgnoreCase),
	),
	"assembly": RuleSet(line(`;`)),
	// A "#!" at offset 0 is a shebang, not a comment.
	"bash": RuleSet(line(`(?!^#!)#`)),
	"haskell": RuleSet(
		line(`--`),
		block(`\{-[\s\S]*?-\}`),
	),
}

func init() {
	if err := Default.Validate(); err != nil {
		panic("rules: invalid default table: " + err.Error())
	}
}

func block(pattern string, opts ...regexp2.RegexOptions) Rule {
	return Rule{Kind: Block, Pattern: compile(pattern, opts)}
}

// line builds a line rule from its start marker.
func line(marker string, opts ...regexp2.RegexOptions) Rule {
	return Rule{Kind: Line, Pattern: compile(leadingSpace+`(?:`+marker+`)`+restOfLine, opts)}
}

func compile(pattern string, opts []regexp2.RegexOptions) *regexp2.Regexp {
	flags := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, o := range opts {
		flags |= o
	}
	re := regexp2.MustCompile(pattern, flags)
	re.MatchTimeout = matchTimeout
	return re
}
