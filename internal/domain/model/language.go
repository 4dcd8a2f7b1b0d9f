package model

type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageCpp        Language = "cpp"
	LanguageC          Language = "c"
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
)

// Languages lists the closed enumeration in display order.
var Languages = []Language{
	LanguageJavaScript,
	LanguageTypeScript,
	LanguagePython,
	LanguageJava,
	LanguageCpp,
	LanguageC,
	LanguageGo,
	LanguageRust,
}

func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

type ExecutionProvider string

const (
	ProviderJudge0      ExecutionProvider = "judge0"
	ProviderOneCompiler ExecutionProvider = "onecompiler"

	DefaultProvider = ProviderJudge0
)

func (p ExecutionProvider) Valid() bool {
	return p == ProviderJudge0 || p == ProviderOneCompiler
}
