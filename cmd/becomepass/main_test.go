package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const revScript = `#!/bin/sh
printf '%s\n' "$1" | awk '{ s = ""; for (i = length($0); i > 0; i--) s = s substr($0, i, 1); print s }'
`

const testInventory = `
some-host.example.com

[some_group]
other-host.example.com
third-host.example.com
`

type fixture struct {
	dir       string
	inventory string
	rev       string
	fail      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixture commands are shell scripts")
	}
	f := &fixture{dir: t.TempDir()}
	f.inventory = f.write(t, "inventory", testInventory, 0o644)
	f.rev = f.write(t, "rev.sh", revScript, 0o755)
	f.fail = f.write(t, "fail.sh", "#!/bin/sh\necho oops\nexit 1\n", 0o755)
	return f
}

func (f *fixture) write(t *testing.T, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func (f *fixture) config(t *testing.T, key, command string) string {
	t.Helper()
	return f.write(t, "ansible.cfg", "[znerol.become_password.command]\n"+key+" = "+command+"\n", 0o644)
}

func run(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"becomepass"}, args...))
	if err != nil {
		return nil, err
	}
	var vars map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &vars), out.String())
	return vars, nil
}

func TestHostCommand(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "host_command", f.rev)

	vars, err := run(t, "--config", cfg, "inventory", "-i", f.inventory, "--host", "some-host.example.com")
	require.NoError(t, err)
	assert.Equal(t, "moc.elpmaxe.tsoh-emos", vars["ansible_become_password"])

	vars, err = run(t, "--config", cfg, "host", "some-host.example.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ansible_become_password": "moc.elpmaxe.tsoh-emos"}, vars)
}

func TestHostFail(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "host_command", f.fail)

	_, err := run(t, "--config", cfg, "inventory", "-i", f.inventory, "--host", "some-host.example.com")
	assert.Error(t, err)
}

func TestGroupCommand(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "group_command", f.rev)

	vars, err := run(t, "--config", cfg, "inventory", "-i", f.inventory, "--host", "other-host.example.com")
	require.NoError(t, err)
	assert.Equal(t, "puorg_emos", vars["ansible_become_password"])

	vars, err = run(t, "--config", cfg, "group", "some_group")
	require.NoError(t, err)
	assert.Equal(t, "puorg_emos", vars["ansible_become_password"])
}

func TestAllGroupCommand(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "group_command", f.rev)

	vars, err := run(t, "--config", cfg, "inventory", "-i", f.inventory, "--host", "some-host.example.com")
	require.NoError(t, err)
	assert.Equal(t, "depuorgnu", vars["ansible_become_password"])
}

func TestGroupFail(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "group_command", f.fail)

	_, err := run(t, "--config", cfg, "inventory", "-i", f.inventory, "--host", "other-host.example.com")
	assert.Error(t, err)
}

func TestNotConfigured(t *testing.T) {
	f := newFixture(t)
	cfg := f.write(t, "ansible.cfg", "[defaults]\nforks = 5\n", 0o644)

	vars, err := run(t, "--config", cfg, "inventory", "-i", f.inventory, "--host", "other-host.example.com")
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestRelativeCommand(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "host_command", "./rev.sh")

	vars, err := run(t, "--config", cfg, "host", "web1")
	require.NoError(t, err)
	assert.Equal(t, "1bew", vars["ansible_become_password"])
}

func TestCommandFlagsOverrideConfig(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "host_command", f.fail)

	vars, err := run(t, "--config", cfg, "--host-command", f.rev, "host", "web1")
	require.NoError(t, err)
	assert.Equal(t, "1bew", vars["ansible_become_password"])
}

func TestStageGate(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "host_command", f.rev)

	vars, err := run(t, "--config", cfg, "--stage", "inventory", "host", "web1")
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestInventoryList(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "host_command", f.rev)

	vars, err := run(t, "--config", cfg, "inventory", "-i", f.inventory, "--list")
	require.NoError(t, err)
	hostvars := vars["_meta"].(map[string]any)["hostvars"].(map[string]any)
	assert.Len(t, hostvars, 3)
	assert.Equal(t, map[string]any{"ansible_become_password": "moc.elpmaxe.tsoh-rehto"}, hostvars["other-host.example.com"])
}

func TestOutputFormats(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "host_command", f.rev)

	for format, want := range map[string]string{
		"yaml": "ansible_become_password: 1bew\n",
		"toml": "ansible_become_password = \"1bew\"\n",
	} {
		var out bytes.Buffer
		err := newApp(&out).Run(context.Background(), []string{"becomepass", "--config", cfg, "--format", format, "host", "web1"})
		require.NoError(t, err, format)
		assert.Equal(t, want, out.String(), format)
	}

	_, err := run(t, "--config", cfg, "--format", "xml", "host", "web1")
	assert.Error(t, err)
}

func TestVersionAndConfig(t *testing.T) {
	f := newFixture(t)
	cfg := f.config(t, "group_command", f.rev)

	var out bytes.Buffer
	require.NoError(t, newApp(&out).Run(context.Background(), []string{"becomepass", "version"}))
	assert.Contains(t, out.String(), "becomepass version")

	out.Reset()
	require.NoError(t, newApp(&out).Run(context.Background(), []string{"becomepass", "--config", cfg, "config"}))
	assert.Contains(t, out.String(), "Group command: "+f.rev)
	assert.Contains(t, out.String(), "Base dir: "+f.dir)
}
