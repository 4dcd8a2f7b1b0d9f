package executor

import (
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
)

// FallbackLanguage is used by the lookups below for any language missing from
// the tables. Callers that care (the HTTP layer) reject unknown languages
// before reaching here; the fallback only keeps the lookups total.
const FallbackLanguage = model.LanguageCpp

// Judge0 CE language ids.
var judge0LanguageIDs = map[model.Language]int{
	model.LanguageJavaScript: 63, // Node.js 12.14.0
	model.LanguageTypeScript: 74, // TypeScript 3.7.4
	model.LanguagePython:     71, // Python 3.8.1
	model.LanguageJava:       62, // OpenJDK 13.0.1
	model.LanguageCpp:        54, // GCC 9.2.0
	model.LanguageC:          50, // GCC 9.2.0
	model.LanguageGo:         60, // Go 1.13.5
	model.LanguageRust:       73, // Rust 1.40.0
}

type oneCompilerLanguage struct {
	Slug     string
	FileName string
}

// OneCompiler is only wired for Python.
var oneCompilerLanguages = map[model.Language]oneCompilerLanguage{
	model.LanguagePython: {Slug: "python", FileName: "index.py"},
}

var starterCode = map[model.Language]string{
	model.LanguageJavaScript: `const lines = require("fs").readFileSync(0, "utf8").trim().split("\n");

function solve(lines) {
  // Write your code here
  return lines.join("\n");
}

console.log(solve(lines));
`,
	model.LanguageTypeScript: `const lines: string[] = require("fs").readFileSync(0, "utf8").trim().split("\n");

function solve(lines: string[]): string {
  // Write your code here
  return lines.join("\n");
}

console.log(solve(lines));
`,
	model.LanguagePython: `import sys


def solve(lines):
    # Write your code here
    return "\n".join(lines)


if __name__ == "__main__":
    print(solve(sys.stdin.read().strip().splitlines()))
`,
	model.LanguageJava: `import java.util.*;

public class Main {
    public static void main(String[] args) {
        Scanner in = new Scanner(System.in);
        // Write your code here
        while (in.hasNextLine()) {
            System.out.println(in.nextLine());
        }
    }
}
`,
	model.LanguageCpp: `#include <bits/stdc++.h>
using namespace std;

int main() {
    ios::sync_with_stdio(false);
    cin.tie(nullptr);
    // Write your code here
    string line;
    while (getline(cin, line)) {
        cout << line << "\n";
    }
    return 0;
}
`,
	model.LanguageC: `#include <stdio.h>

int main(void) {
    char line[4096];
    /* Write your code here */
    while (fgets(line, sizeof line, stdin)) {
        fputs(line, stdout);
    }
    return 0;
}
`,
	model.LanguageGo: `package main

import (
	"bufio"
	"fmt"
	"os"
)

func main() {
	in := bufio.NewScanner(os.Stdin)
	// Write your code here
	for in.Scan() {
		fmt.Println(in.Text())
	}
}
`,
	model.LanguageRust: `use std::io::{self, Read};

fn main() {
    let mut input = String::new();
    io::stdin().read_to_string(&mut input).unwrap();
    // Write your code here
    print!("{}", input);
}
`,
}

// Judge0LanguageID maps lang to its Judge0 id. Unknown languages map to the
// FallbackLanguage id and ok is false.
func Judge0LanguageID(lang model.Language) (id int, ok bool) {
	if id, ok := judge0LanguageIDs[lang]; ok {
		return id, true
	}
	return judge0LanguageIDs[FallbackLanguage], false
}

// OneCompilerLanguage has no fallback: OneCompiler rejects what it is not
// configured for.
func OneCompilerLanguage(lang model.Language) (slug, fileName string, ok bool) {
	l, ok := oneCompilerLanguages[lang]
	return l.Slug, l.FileName, ok
}

// StarterCode returns the editor template for lang, falling back to the
// FallbackLanguage template.
func StarterCode(lang model.Language) string {
	if code, ok := starterCode[lang]; ok {
		return code
	}
	return starterCode[FallbackLanguage]
}

type LanguageInfo struct {
	Language            model.Language `json:"language"`
	Judge0ID            int            `json:"judge0_id"`
	OneCompilerSlug     string         `json:"onecompiler_slug,omitempty"`
	SupportsOneCompiler bool           `json:"supports_onecompiler"`
	StarterCode         string         `json:"starter_code"`
}

func DescribeLanguage(lang model.Language) LanguageInfo {
	id, _ := Judge0LanguageID(lang)
	slug, _, ok := OneCompilerLanguage(lang)
	return LanguageInfo{
		Language:            lang,
		Judge0ID:            id,
		OneCompilerSlug:     slug,
		SupportsOneCompiler: ok,
		StarterCode:         StarterCode(lang),
	}
}

func SupportedLanguages() []LanguageInfo {
	out := make([]LanguageInfo, 0, len(model.Languages))
	for _, lang := range model.Languages {
		out = append(out, DescribeLanguage(lang))
	}
	return out
}
