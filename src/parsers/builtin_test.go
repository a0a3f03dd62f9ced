package parsers

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/analysis/src/issues"
	"github.com/thought-machine/analysis/src/parser"
)

func TestAllDefinitionsAreValid(t *testing.T) {
	for _, def := range Definitions() {
		_, err := parser.NewConfiguration(def)
		assert.NoError(t, err, def.ID)
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{"gcc", "golangci-lint", "gometalinter", "jslint", "maven", "nag-fortran", "ruff", "tsc"}, r.IDs())

	// Each call gets its own registry.
	extra, err := parser.NewLineParserFromDefinition(parser.Definition{ID: "extra", Header: `(?P<message>.*)`, DefaultCategory: "x"})
	require.NoError(t, err)
	r2, err := NewRegistry(extra)
	require.NoError(t, err)
	assert.Contains(t, r2.IDs(), "extra")
	assert.NotContains(t, r.IDs(), "extra")

	// Can't shadow a builtin.
	gcc, err := parser.NewLineParserFromDefinition(GCC())
	require.NoError(t, err)
	_, err = NewRegistry(gcc)
	assert.Error(t, err)
}

func TestGCC(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	p, err := r.Get("gcc")
	require.NoError(t, err)
	is := parseFile(t, p, "testdata/gcc.txt")
	require.Equal(t, 4, is.Size())

	assert.Equal(t, "main.c", is.Get(0).FileName())
	assert.Equal(t, 5, is.Get(0).LineStart())
	assert.Equal(t, 9, is.Get(0).ColumnStart())
	assert.Equal(t, "warning", is.Get(0).Category())
	assert.Equal(t, issues.Normal, is.Get(0).Priority())
	assert.Equal(t, "unused variable 'x' [-Wunused-variable]", is.Get(0).Message())

	assert.Equal(t, issues.High, is.Get(1).Priority())
	assert.Equal(t, "fatal error", is.Get(2).Category())
	assert.Equal(t, "missing.h: No such file or directory", is.Get(2).Message())
	assert.Equal(t, issues.High, is.Get(2).Priority())

	assert.Equal(t, 12, is.Get(3).LineStart())
	assert.Equal(t, 0, is.Get(3).ColumnStart())
	assert.Equal(t, issues.Low, is.Get(3).Priority())
}

func TestLineFormats(t *testing.T) {
	type expectation struct {
		file     string
		line     int
		column   int
		category string
		priority issues.Priority
		message  string
	}
	for id, tc := range map[string]struct {
		in       string
		expected []expectation
	}{
		"tsc": {
			in: "src/app.ts(12,5): error TS2322: Type 'string' is not assignable to type 'number'.\n" +
				"  Types of property 'x' are incompatible.\n" +
				"src/app.ts(20,1): warning TS6133: 'y' is declared but its value is never read.\n",
			expected: []expectation{
				{"src/app.ts", 12, 5, "error", issues.High, "Type 'string' is not assignable to type 'number'.\n  Types of property 'x' are incompatible."},
				{"src/app.ts", 20, 1, "warning", issues.Normal, "'y' is declared but its value is never read."},
			},
		},
		"ruff": {
			in: "app/main.py:3:1: F401 `os` imported but unused\n" +
				"Found 2 errors.\n" +
				"app/main.py:10:5: F821 Undefined name `foo`\n",
			expected: []expectation{
				{"app/main.py", 3, 1, "F401", issues.Normal, "`os` imported but unused"},
				{"app/main.py", 10, 5, "F821", issues.High, "Undefined name `foo`"},
			},
		},
		"maven": {
			in: "[INFO] Compiling 12 source files\n" +
				"[ERROR] /src/main/java/App.java:[12,8] cannot find symbol\n" +
				"[WARNING] /src/main/java/Util.java:[3,1] [deprecation] Date in java.util has been deprecated\n",
			expected: []expectation{
				{"/src/main/java/App.java", 12, 8, "ERROR", issues.High, "cannot find symbol"},
				{"/src/main/java/Util.java", 3, 1, "WARNING", issues.Normal, "[deprecation] Date in java.util has been deprecated"},
			},
		},
		"golangci-lint": {
			in: "main.go:12:5: Error return value of `f.Close` is not checked (errcheck)\n" +
				"\tf.Close()\n" +
				"\t^\n" +
				"util.go:3: undeclared name: `bar` (typecheck)\n",
			expected: []expectation{
				{"main.go", 12, 5, "errcheck", issues.Normal, "Error return value of `f.Close` is not checked"},
				{"util.go", 3, 0, "typecheck", issues.High, "undeclared name: `bar`"},
			},
		},
		"gometalinter": {
			in: "src/core/lint.go:21:2  structcheck  `y` is unused\n",
			expected: []expectation{
				{"src/core/lint.go", 21, 2, "structcheck", issues.Normal, "`y` is unused"},
			},
		},
	} {
		t.Run(id, func(t *testing.T) {
			r, err := NewRegistry()
			require.NoError(t, err)
			p, err := r.Get(id)
			require.NoError(t, err)
			is, err := p.Parse(strings.NewReader(tc.in))
			require.NoError(t, err)
			require.Equal(t, len(tc.expected), is.Size())
			for i, e := range tc.expected {
				issue := is.Get(i)
				assert.Equal(t, e.file, issue.FileName())
				assert.Equal(t, e.line, issue.LineStart())
				assert.Equal(t, e.column, issue.ColumnStart())
				assert.Equal(t, e.category, issue.Category())
				assert.Equal(t, e.priority, issue.Priority())
				assert.Equal(t, e.message, issue.Message())
				assert.Equal(t, id, issue.Type())
			}
		})
	}
}

func TestDetectBuiltins(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	for filename, expected := range map[string]string{
		"testdata/NagFortran.txt": "nag-fortran",
		"testdata/gcc.txt":        "gcc",
		"testdata/csslint.xml":    "jslint",
	} {
		b, err := os.ReadFile(filename)
		require.NoError(t, err)
		p, err := parser.Detect(r, b)
		require.NoError(t, err, filename)
		assert.Equal(t, expected, p.ID(), filename)
	}
}
