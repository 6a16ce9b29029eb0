package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshift/imagemgmt/internal/cli"
)

type env struct {
	t   *testing.T
	dir string
	db  string
}

func newEnv(t *testing.T) *env {
	dir := t.TempDir()
	return &env{t: t, dir: dir, db: filepath.Join(dir, "imagemgmt.db")}
}

func (e *env) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := cli.New()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append([]string{"--db", e.db, "--user", "alice"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "imagemgmt %v", args)
	return out
}

func (e *env) file(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImageTypesAndVersions(t *testing.T) {
	e := newEnv(t)

	e.mustRun("image-type", "create", "spark", "--description", "Spark runtime")
	out := e.mustRun("image-type", "list")
	assert.Contains(t, out, "spark")
	assert.Contains(t, out, "Spark runtime")

	e.mustRun("version", "register", "spark", "3.1.0", "--state", "active")
	e.mustRun("version", "register", "spark", "3.2.0")
	e.mustRun("version", "set-state", "spark", "3.2.0", "unstable")

	out = e.mustRun("version", "list", "spark")
	assert.Contains(t, out, "3.1.0")
	assert.Contains(t, out, "unstable")

	_, err := e.run("version", "register", "spark", "not-semver")
	assert.Error(t, err)
}

func TestRampupApplyAndResolve(t *testing.T) {
	e := newEnv(t)

	e.mustRun("image-type", "create", "spark")
	e.mustRun("image-type", "create", "hive")
	e.mustRun("version", "register", "spark", "3.1.0", "--state", "active")
	e.mustRun("version", "register", "spark", "3.2.0")
	e.mustRun("version", "register", "hive", "2.3.0", "--state", "active")

	plan := e.file("plan.yaml", `
imageType: spark
name: spark-3.2
entries:
  - version: 3.1.0
    percentage: 0
  - version: 3.2.0
    percentage: 100
`)
	out := e.mustRun("rampup", "apply", "-f", plan)
	assert.Contains(t, out, "active for spark")

	out = e.mustRun("rampup", "get", "spark")
	assert.Contains(t, out, "spark-3.2")
	assert.Contains(t, out, "3.2.0")

	out = e.mustRun("resolve", "spark", "hive")
	assert.Contains(t, out, "3.2.0")
	assert.Contains(t, out, "2.3.0")

	out = e.mustRun("resolve", "--all", "--key", "reporting.nightly")
	assert.Contains(t, out, "3.2.0")

	update := e.file("update.yaml", `
imageType: spark
entries:
  - version: 3.1.0
    percentage: 100
  - version: 3.2.0
    percentage: 0
`)
	e.mustRun("rampup", "apply", "--update", "-f", update)
	out = e.mustRun("resolve", "spark")
	assert.Contains(t, out, "3.1.0")

	invalid := e.file("invalid.yaml", `
imageType: spark
name: broken
entries:
  - version: 3.1.0
    percentage: 60
`)
	_, err := e.run("rampup", "apply", "-f", invalid)
	assert.Error(t, err)
}

func TestResolveUnresolved(t *testing.T) {
	e := newEnv(t)
	e.mustRun("image-type", "create", "pig")

	_, err := e.run("resolve", "pig")
	assert.ErrorContains(t, err, "pig")

	_, err = e.run("resolve")
	assert.Error(t, err)
}

func TestDispatchAndResolveFlows(t *testing.T) {
	e := newEnv(t)
	e.mustRun("image-type", "create", "spark")
	e.mustRun("version", "register", "spark", "3.2.0", "--state", "active")

	flow := e.file("flow.yaml", `
project: reporting
flowId: nightly
root:
  id: root
  nodes:
    - id: extract
      type: spark
      properties:
        user.to.proxy: etl
`)
	out := e.mustRun("dispatch", "-f", flow)
	assert.Contains(t, out, "reporting.nightly: resolved")
	assert.Contains(t, out, "proxy users: etl")
	assert.Contains(t, out, "3.2.0")

	out = e.mustRun("resolve", "--flow", flow)
	assert.Contains(t, out, "reporting.nightly:")
	assert.Contains(t, out, "3.2.0")
}

func TestConfigFile(t *testing.T) {
	e := newEnv(t)
	cfg := e.file("imagemgmt.yaml", "workflow:\n  engine: temporal\n")

	_, err := e.run("--config", cfg, "image-type", "list")
	assert.ErrorContains(t, err, "workflow.engine")
}

func TestListingsRenderTables(t *testing.T) {
	e := newEnv(t)
	e.mustRun("image-type", "create", "spark", "--description", "Spark runtime")
	e.mustRun("version", "register", "spark", "3.1.0", "--state", "active")

	out := e.mustRun("image-type", "list")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "CREATED BY")
	assert.Contains(t, out, "│")
	assert.NotContains(t, out, "\t")

	out = e.mustRun("version", "list", "spark")
	assert.Contains(t, out, "RELEASE TAG")
	assert.Contains(t, out, "│")

	out = e.mustRun("resolve", "spark")
	assert.Contains(t, out, "IMAGE TYPE")
	assert.Contains(t, out, "│")
	assert.NotContains(t, out, "\t")
}
