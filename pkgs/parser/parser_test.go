package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string) []Statement {
	t.Helper()
	stmts, err := Parse(input)
	require.NoError(t, err)
	return stmts
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Statement
	}{
		{
			name:  "set",
			input: "TARGET = myapp\n",
			want: []Statement{
				&Assignment{Key: "TARGET", Op: OpSet, Values: []string{"myapp"}, Line: 1},
			},
		},
		{
			name:  "add multiple values",
			input: "SOURCES += main.cpp util.cpp\n",
			want: []Statement{
				&Assignment{Key: "SOURCES", Op: OpAdd, Values: []string{"main.cpp", "util.cpp"}, Line: 1},
			},
		},
		{
			name:  "unique add",
			input: "CONFIG *= release\n",
			want: []Statement{
				&Assignment{Key: "CONFIG", Op: OpUniqueAdd, Values: []string{"release"}, Line: 1},
			},
		},
		{
			name:  "remove",
			input: "DEFINES -= QT_NO_CAST\n",
			want: []Statement{
				&Assignment{Key: "DEFINES", Op: OpRemove, Values: []string{"QT_NO_CAST"}, Line: 1},
			},
		},
		{
			name:  "empty value list",
			input: "SOURCES =\n",
			want: []Statement{
				&Assignment{Key: "SOURCES", Op: OpSet, Line: 1},
			},
		},
		{
			name:  "no trailing newline",
			input: "TARGET = myapp",
			want: []Statement{
				&Assignment{Key: "TARGET", Op: OpSet, Values: []string{"myapp"}, Line: 1},
			},
		},
		{
			name:  "trailing comment",
			input: "TARGET = myapp # the binary name\n",
			want: []Statement{
				&Assignment{Key: "TARGET", Op: OpSet, Values: []string{"myapp"}, Line: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLineContinuation(t *testing.T) {
	input := "SOURCES = main.cpp \\\n    util.cpp \\\n    extra.cpp\nTARGET = app\n"
	want := []Statement{
		&Assignment{Key: "SOURCES", Op: OpSet, Values: []string{"main.cpp", "util.cpp", "extra.cpp"}, Line: 1},
		&Assignment{Key: "TARGET", Op: OpSet, Values: []string{"app"}, Line: 4},
	}
	got := mustParse(t, input)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestParseContinuationWithCRLF(t *testing.T) {
	input := "SOURCES = a.cpp \\\r\n    b.cpp\r\n"
	got := mustParse(t, input)
	require.Len(t, got, 1)
	a := got[0].(*Assignment)
	assert.Equal(t, []string{"a.cpp", "b.cpp"}, a.Values)
}

func TestParseQuotedValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"spaces preserved", `DEFINES = "A B"` + "\n", []string{"A B"}},
		{"escape removed", `DEFINES = "say \"hi\""` + "\n", []string{`say "hi"`}},
		{"empty string", `DEFINES = ""` + "\n", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input)
			require.Len(t, got, 1)
			a, ok := got[0].(*Assignment)
			require.True(t, ok)
			assert.Equal(t, tt.want, a.Values)
		})
	}
}

func TestParseSubstitutions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"dollar dollar name", "X = $$PWD\n", []string{"$$PWD"}},
		{"dollar dollar braces", "X = $${TARGET}\n", []string{"$${TARGET}"}},
		{"property", "X = $$[QT_INSTALL_LIBS]\n", []string{"$$[QT_INSTALL_LIBS]"}},
		{"environment parens", "X = $(HOME)\n", []string{"$(HOME)"}},
		{"environment braces", "X = ${HOME}\n", []string{"${HOME}"}},
		{"function call", "X = $$files(*.cpp)\n", []string{"$$files(*.cpp)"}},
		{"embedded in word", "X = $$PWD/src\n", []string{"$$PWD/src"}},
		{"prefix and substitution", "X = lib$${TARGET}.so\n", []string{"lib$${TARGET}.so"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input)
			require.Len(t, got, 1)
			a, ok := got[0].(*Assignment)
			require.True(t, ok)
			assert.Equal(t, tt.want, a.Values)
		})
	}
}

func TestParseConditionals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Statement
	}{
		{
			name:  "single line",
			input: "win32: SOURCES += win.cpp\n",
			want: []Statement{
				&Conditional{
					Condition: "win32",
					Then: []Statement{
						&Assignment{Key: "SOURCES", Op: OpAdd, Values: []string{"win.cpp"}, Line: 1},
					},
					Line: 1,
				},
			},
		},
		{
			name:  "block",
			input: "win32 {\n    SOURCES += win.cpp\n}\n",
			want: []Statement{
				&Conditional{
					Condition: "win32",
					Then: []Statement{
						&Assignment{Key: "SOURCES", Op: OpAdd, Values: []string{"win.cpp"}, Line: 2},
					},
					Line: 1,
				},
			},
		},
		{
			name:  "block with else block",
			input: "win32 {\n    A = 1\n} else {\n    A = 2\n}\n",
			want: []Statement{
				&Conditional{
					Condition: "win32",
					Then: []Statement{
						&Assignment{Key: "A", Op: OpSet, Values: []string{"1"}, Line: 2},
					},
					Else: []Statement{
						&Assignment{Key: "A", Op: OpSet, Values: []string{"2"}, Line: 4},
					},
					Line: 1,
				},
			},
		},
		{
			name:  "single line with else single line",
			input: "win32: A = 1\nelse: A = 2\n",
			want: []Statement{
				&Conditional{
					Condition: "win32",
					Then: []Statement{
						&Assignment{Key: "A", Op: OpSet, Values: []string{"1"}, Line: 1},
					},
					Else: []Statement{
						&Assignment{Key: "A", Op: OpSet, Values: []string{"2"}, Line: 2},
					},
					Line: 1,
				},
			},
		},
		{
			name:  "else chain nests",
			input: "win32: A = 1\nelse: macos: A = 2\nelse: A = 3\n",
			want: []Statement{
				&Conditional{
					Condition: "win32",
					Then: []Statement{
						&Assignment{Key: "A", Op: OpSet, Values: []string{"1"}, Line: 1},
					},
					Else: []Statement{
						&Conditional{
							Condition: "macos",
							Then: []Statement{
								&Assignment{Key: "A", Op: OpSet, Values: []string{"2"}, Line: 2},
							},
							Else: []Statement{
								&Assignment{Key: "A", Op: OpSet, Values: []string{"3"}, Line: 3},
							},
							Line: 2,
						},
					},
					Line: 1,
				},
			},
		},
		{
			name:  "complex condition text",
			input: "win32|macos:!qtConfig(gui) {\n    A = 1\n}\n",
			want: []Statement{
				&Conditional{
					Condition: "win32|macos",
					Then: []Statement{
						&Conditional{
							Condition: "!qtConfig(gui)",
							Then: []Statement{
								&Assignment{Key: "A", Op: OpSet, Values: []string{"1"}, Line: 2},
							},
							Line: 1,
						},
					},
					Line: 1,
				},
			},
		},
		{
			name:  "condition whitespace normalized",
			input: "win32   &&   !static {\n    A = 1\n}\n",
			want: []Statement{
				&Conditional{
					Condition: "win32 && !static",
					Then: []Statement{
						&Assignment{Key: "A", Op: OpSet, Values: []string{"1"}, Line: 2},
					},
					Line: 1,
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseElseSeparatedByBlankLinesAndComments(t *testing.T) {
	input := "win32 {\n    A = 1\n}\n\n# comment between branches\nelse {\n    A = 2\n}\n"
	got := mustParse(t, input)
	require.Len(t, got, 1)
	c := got[0].(*Conditional)
	assert.Len(t, c.Then, 1)
	assert.Len(t, c.Else, 1)
}

func TestParseReservedForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Statement
	}{
		{
			name:  "include",
			input: "include(../common.pri)\n",
			want:  []Statement{&Include{Path: "../common.pri", Line: 1}},
		},
		{
			name:  "include with spaces",
			input: "include( ../common.pri )\n",
			want:  []Statement{&Include{Path: "../common.pri", Line: 1}},
		},
		{
			name:  "load",
			input: "load(qt_module)\n",
			want:  []Statement{&Load{Name: "qt_module", Line: 1}},
		},
		{
			name:  "option",
			input: "option(host_build)\n",
			want:  []Statement{&Option{Name: "host_build", Line: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIncludeAsConditionFallsBack(t *testing.T) {
	// A trailing branch makes `include(...)` part of a condition, not an
	// include statement.
	input := "include(x.pri): A = 1\n"
	got := mustParse(t, input)
	require.Len(t, got, 1)
	c, ok := got[0].(*Conditional)
	require.True(t, ok)
	assert.Equal(t, "include(x.pri)", c.Condition)
}

func TestParseOpaqueFunctionCalls(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantRaw string
	}{
		{"simple call", "message(hello world)\n", "message(hello world)"},
		{"nested brackets", "requires(qtConfig(opengl))\n", "requires(qtConfig(opengl))"},
		{"brackets in string ignored", `error("unbalanced ( here")` + "\n", `error("unbalanced ( here")`},
		{"for loop", "for(f, FILES) {\n    SOURCES += $$f\n}\n", "for(f, FILES) {\n    SOURCES += $$f\n}"},
		{"defineTest", "defineTest(qtCheck) {\n    return(true)\n}\n", "defineTest(qtCheck) {\n    return(true)\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.input)
			require.Len(t, got, 1)
			fc, ok := got[0].(*FunctionCall)
			require.True(t, ok)
			assert.Equal(t, tt.wantRaw, fc.Raw)
		})
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	input := "# leading comment\n\nTARGET = app\n\n# trailing comment\n"
	want := []Statement{
		&Assignment{Key: "TARGET", Op: OpSet, Values: []string{"app"}, Line: 3},
	}
	got := mustParse(t, input)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyInput(t *testing.T) {
	got := mustParse(t, "")
	assert.Empty(t, got)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unbalanced block", "win32 {\n    A = 1\n", "missing '}'"},
		{"stray close brace", "}\n", "unexpected '}'"},
		{"unterminated string", `A = "no end` + "\n", "unterminated string"},
		{"unbalanced call", "message(oops\n", "unbalanced"},
		{"bad variable reference", "A = $${unterminated\n", "missing '}'"},
		{"else without branch", "win32: A = 1\nelse + B\n", "expected ':' or '{' after 'else'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, err := Parse("A = ok\nB = \"broken\n")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, err.Error(), "^")
}

func TestParseRealisticProject(t *testing.T) {
	input := strings.Join([]string{
		"TARGET = QtExample",
		"QT = core gui",
		"",
		"include($$PWD/common.pri)",
		"load(qt_module)",
		"",
		"SOURCES += \\",
		"    main.cpp \\",
		"    widget.cpp",
		"",
		"HEADERS += widget.h",
		"",
		"win32 {",
		"    SOURCES += win/impl.cpp",
		"    DEFINES += ON_WINDOWS",
		"} else {",
		"    SOURCES += unix/impl.cpp",
		"}",
		"",
		"qtConfig(opengl): QT += opengl",
		"",
	}, "\n")

	got := mustParse(t, input)
	require.Len(t, got, 8)
	assert.IsType(t, &Assignment{}, got[0])
	assert.IsType(t, &Include{}, got[2])
	assert.IsType(t, &Load{}, got[3])
	cond := got[6].(*Conditional)
	assert.Equal(t, "win32", cond.Condition)
	assert.Len(t, cond.Then, 2)
	assert.Len(t, cond.Else, 1)
}
