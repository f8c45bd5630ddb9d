package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promake/pro2cmake/pkgs/errors"
	"github.com/promake/pro2cmake/pkgs/parser"
	"github.com/promake/pro2cmake/pkgs/scope"
)

// generate writes a project file plus empty source files into a temp dir,
// runs the generator and returns the produced CMakeLists.txt.
func generate(t *testing.T, pro string, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	proPath := filepath.Join(dir, "test.pro")
	require.NoError(t, os.WriteFile(proPath, []byte(pro), 0o644))

	stmts, err := parser.Parse(pro)
	require.NoError(t, err)
	root, err := scope.FromStatements(nil, proPath, stmts, "", "")
	require.NoError(t, err)

	require.NoError(t, New(nil).GenerateCMakeLists(root))

	data, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	return string(data)
}

func TestGenerateBinaryWithConditionalSources(t *testing.T) {
	out := generate(t,
		"TARGET = myapp\nSOURCES += a.cpp b.cpp\nwin32 {\n    SOURCES += c.cpp\n}\n",
		"a.cpp", "b.cpp", "c.cpp")

	assert.True(t, strings.HasPrefix(out, "# Generated from test.pro.\n\n"))
	assert.Contains(t, out, "## myapp Binary:")
	assert.Contains(t, out, "add_qt_executable(myapp\n    GUI\n    SOURCES\n        a.cpp\n        b.cpp\n)\n")
	assert.Contains(t, out, "## Scopes:")
	assert.Contains(t, out, "\nextend_target(myapp CONDITION WIN32\n    SOURCES\n        c.cpp\n)\n")
	assert.Equal(t, 1, strings.Count(out, "extend_target"))
}

func TestGenerateElseProducesComplementaryBlocks(t *testing.T) {
	out := generate(t,
		"TARGET = myapp\nCONFIG += console\nwin32: SOURCES += w.cpp\nelse: SOURCES += u.cpp\n",
		"w.cpp", "u.cpp")

	assert.Contains(t, out, "extend_target(myapp CONDITION WIN32\n    SOURCES\n        w.cpp\n)")
	assert.Contains(t, out, "extend_target(myapp CONDITION UNIX\n    SOURCES\n        u.cpp\n)")
}

func TestGenerateConsoleBinaryHasNoGUI(t *testing.T) {
	out := generate(t, "TARGET = tool\nCONFIG += console\nSOURCES = main.cpp\n", "main.cpp")
	assert.Contains(t, out, "add_qt_executable(tool\n    SOURCES\n")
	assert.NotContains(t, out, "GUI")
}

func TestGenerateModule(t *testing.T) {
	out := generate(t,
		"TARGET = QtExample\nTEMPLATE = lib\nCONFIG += static\nQT = core gui\nSOURCES = example.cpp\n",
		"example.cpp")

	assert.Contains(t, out, "## Example Module:")
	assert.Contains(t, out, "add_qt_module(Example\n    STATIC\n")
	// Qt::Core is implied for modules, only Qt::Gui remains
	assert.Contains(t, out, "    LIBRARIES\n        Qt::Gui\n")
	assert.NotContains(t, out, "Qt::Core\n")
}

func TestGenerateModuleRequiresQtPrefix(t *testing.T) {
	dir := t.TempDir()
	proPath := filepath.Join(dir, "bad.pro")
	pro := "TARGET = example\nTEMPLATE = lib\n"
	require.NoError(t, os.WriteFile(proPath, []byte(pro), 0o644))

	stmts, err := parser.Parse(pro)
	require.NoError(t, err)
	root, err := scope.FromStatements(nil, proPath, stmts, "", "")
	require.NoError(t, err)

	err = New(nil).GenerateCMakeLists(root)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrGeneration))
}

func TestGenerateTestTarget(t *testing.T) {
	out := generate(t,
		"TARGET = tst_example\nCONFIG += testcase\nQT = core testlib\nSOURCES = tst_example.cpp\n",
		"tst_example.cpp")

	assert.Contains(t, out, "## tst_example Test:")
	assert.Contains(t, out, "add_qt_test(tst_example\n")
	// Qt::Core and Qt::Test are implied for tests
	assert.NotContains(t, out, "LIBRARIES")
}

func TestGeneratePlugin(t *testing.T) {
	out := generate(t,
		"TARGET = qexample\nload(qt_plugin)\nPLUGIN_TYPE = imageformats\nSOURCES = plugin.cpp\n",
		"plugin.cpp")

	assert.Contains(t, out, "add_qt_plugin(qexample\n    TYPE imageformats\n")
}

func TestGenerateToolTarget(t *testing.T) {
	out := generate(t, "TARGET = moc\nload(qt_tool)\nSOURCES = main.cpp\n", "main.cpp")
	assert.Contains(t, out, "add_qt_tool(moc\n")
}

func TestGenerateLibraries(t *testing.T) {
	out := generate(t,
		"TARGET = app\nCONFIG += console\nQT = core network\nLIBS += -framework Cocoa -lz zlib -L/opt/libs\nSOURCES = main.cpp\n",
		"main.cpp")

	assert.Contains(t, out, "    LIBRARIES\n")
	assert.Contains(t, out, "        Qt::Network\n")
	assert.Contains(t, out, "        ${FWCocoa}\n")
	assert.Contains(t, out, "        z\n")
	assert.Contains(t, out, "        ZLIB::ZLIB\n")
	assert.Contains(t, out, "        # Remove: L/opt/libs\n")
}

func TestGenerateDefinesAndIncludes(t *testing.T) {
	out := generate(t,
		"TARGET = app\nCONFIG += console\nDEFINES += FOO BAR=1\nINCLUDEPATH += sub/ /abs/path\nSOURCES = main.cpp\n",
		"main.cpp")

	assert.Contains(t, out, "    DEFINES\n        FOO\n        BAR=1\n")
	assert.Contains(t, out, "    INCLUDE_DIRECTORIES\n        sub\n        /abs/path\n")
}

func TestGenerateMissingSourceGetsSentinel(t *testing.T) {
	out := generate(t, "TARGET = app\nCONFIG += console\nSOURCES = gone.cpp\n")
	assert.Contains(t, out, "gone.cpp-NOTFOUND")
}

func TestGenerateIgnoredKeysReported(t *testing.T) {
	out := generate(t,
		"TARGET = app\nCONFIG += console\nQMAKE_CFLAGS += -Wall\nSOURCES = main.cpp\n",
		"main.cpp")

	assert.Contains(t, out, `    # QMAKE_CFLAGS = "-Wall"`)
}

func TestGenerateDiagnosticsOnlyScopeIsCommentedOut(t *testing.T) {
	out := generate(t,
		"TARGET = app\nCONFIG += console\nSOURCES = main.cpp\nwin32 {\n    QMAKE_LFLAGS += /OPT\n}\n",
		"main.cpp")

	assert.Contains(t, out, "#extend_target(app CONDITION WIN32\n")
	assert.Contains(t, out, `#    # QMAKE_LFLAGS = "/OPT"`)
}

func TestGenerateEmptyScopeIsElided(t *testing.T) {
	out := generate(t,
		"TARGET = app\nCONFIG += console\nSOURCES = main.cpp\nwin32 {\n    TARGET = app2\n}\n",
		"main.cpp")

	// the scope resolves nothing reportable, so no extension appears
	assert.NotContains(t, out, "extend_target")
}

func TestGenerateSubdirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub1"), 0o755))
	pro := "TEMPLATE = subdirs\nSUBDIRS = sub1 -legacy\nwin32 {\n    SUBDIRS += sub2\n}\n"
	proPath := filepath.Join(dir, "test.pro")
	require.NoError(t, os.WriteFile(proPath, []byte(pro), 0o644))

	stmts, err := parser.Parse(pro)
	require.NoError(t, err)
	root, err := scope.FromStatements(nil, proPath, stmts, "", "")
	require.NoError(t, err)
	require.NoError(t, New(nil).GenerateCMakeLists(root))

	data, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "add_subdirectory(sub1)\n")
	assert.Contains(t, out, `### remove_subdirectory("legacy")`)
	assert.Contains(t, out, "\nif(WIN32)\n")
	assert.Contains(t, out, "endif()\n")
	// sub2 does not exist, it is only warned about
	assert.NotContains(t, out, "add_subdirectory(sub2)")
}

func TestGenerateSourceViaVPATH(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "extra"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra", "x.cpp"), nil, 0o644))
	pro := "TARGET = app\nCONFIG += console\nVPATH += " + filepath.Join(dir, "extra") + "\nSOURCES = x.cpp\n"
	proPath := filepath.Join(dir, "test.pro")
	require.NoError(t, os.WriteFile(proPath, []byte(pro), 0o644))

	stmts, err := parser.Parse(pro)
	require.NoError(t, err)
	root, err := scope.FromStatements(nil, proPath, stmts, "", "")
	require.NoError(t, err)
	require.NoError(t, New(nil).GenerateCMakeLists(root))

	data, err := os.ReadFile(filepath.Join(dir, "CMakeLists.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "extra/x.cpp")
}

func TestSortSources(t *testing.T) {
	lines := sortSources([]string{
		"z.cpp",
		"a/impl.cpp",
		"handler.cpp",
		"handler_p.h",
		"handler.h",
		"",
	})
	assert.Equal(t, []string{
		"a/impl.cpp",
		"handler.cpp handler.h handler_p.h",
		"z.cpp",
	}, lines)
}
