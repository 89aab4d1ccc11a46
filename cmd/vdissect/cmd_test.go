package main

import (
	"bytes"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, root string, rel string, body string) string {
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		configFile, scriptsDir = "", ""
		direction, decompress, scriptFile, literal = "server", false, "", ""
	})
}

func TestRunDissectLiteral(t *testing.T) {
	resetFlags(t)
	root := t.TempDir()
	writeScript(t, root, "Server/42.yaml", "- readFixedString(3, 'name')\n")

	scriptsDir = root
	direction = "server"
	literal = "d4'3' d2'42' s'AB' 00"

	var out bytes.Buffer
	require.NoError(t, runDissect(context.Background(), &out, nil))
	assert.Contains(t, out.String(), "Opcode : 42\n")
	assert.Contains(t, out.String(), "name [String] : AB\n")
}

func TestRunDissectFileAndInlineScript(t *testing.T) {
	resetFlags(t)
	root := t.TempDir()
	packetPath := filepath.Join(root, "packet.bin")
	require.NoError(t, os.WriteFile(packetPath, []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x07, 0x00, 0x09}, 0o644))
	scriptFile = writeScript(t, root, "custom.yaml", "- readUInt8('v')\n")

	scriptsDir = root
	direction = "client"

	var out bytes.Buffer
	require.NoError(t, runDissect(context.Background(), &out, []string{packetPath}))
	assert.Contains(t, out.String(), "Direction : Inbound\n")
	assert.Contains(t, out.String(), "v [UByte] : 9\n")
}

func TestRunDissectErrors(t *testing.T) {
	resetFlags(t)
	scriptsDir = t.TempDir()

	direction = "up"
	assert.Error(t, runDissect(context.Background(), &bytes.Buffer{}, nil))

	direction = "server"
	assert.Error(t, runDissect(context.Background(), &bytes.Buffer{}, nil))

	literal = "d4'1' d2'5' 01"
	var out bytes.Buffer
	assert.Error(t, runDissect(context.Background(), &out, nil))
	assert.Contains(t, out.String(), "[ERROR] ScriptNotFound")
}

func TestRunCheck(t *testing.T) {
	resetFlags(t)
	root := t.TempDir()
	writeScript(t, root, "Server/1.yaml", "- readUInt8('a')\n- log(dumpBlob('x', 1))\n")
	writeScript(t, root, "Client/2.yaml", "- readUInt8(\n")
	writeScript(t, root, "Client/notes.txt", "ignored")
	scriptsDir = root

	var out bytes.Buffer
	err := runCheck(&out, nil)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "ok   "+filepath.Join(root, "Server", "1.yaml"))
	assert.Contains(t, out.String(), "FAIL ScriptCompileError at "+filepath.Join(root, "Client", "2.yaml")+":1: ")
	assert.Contains(t, out.String(), "Syntax error")
	assert.NotContains(t, out.String(), "notes.txt")

	out.Reset()
	require.NoError(t, runCheck(&out, []string{filepath.Join(root, "Server", "1.yaml")}))
}

func TestBundledScriptsCompile(t *testing.T) {
	resetFlags(t)
	configFile = filepath.Join("..", "..", "resources", "vdissect.yaml")

	var out bytes.Buffer
	require.NoError(t, runCheck(&out, []string{filepath.Join("..", "..", "resources", "Packets")}))
	assert.Contains(t, out.String(), "42.yaml")
	assert.Contains(t, out.String(), "7.yaml")
}
