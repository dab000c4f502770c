package name

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/suitedb/internal/cmd/base"
)

func TestCommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/shop/go.mod", []byte("module github.com/acme/shop/v2\n"), 0o644))

	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "module root", args: []string{"-dir", "/src/shop"}, want: "acme_shop"},
		{name: "subpackage", args: []string{"-dir", "/src/shop/internal/order-store"}, want: "acme_shop_internal_order_store"},
		{name: "explicit package", args: []string{"-package", "acme/foo-bar"}, want: "acme_foo_bar"},
		{name: "no namespace", args: []string{"-package", "standalone-lib"}, want: "standalone_lib"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ui := cli.NewMockUi()
			c := &Command{Command: base.NewCommand(hclog.NewNullLogger(), ui), Fs: fs}

			require.Equal(t, 0, c.Run(tc.args), ui.ErrorWriter.String())
			assert.Equal(t, tc.want+"\n", ui.OutputWriter.String())
		})
	}
}

func TestCommand_NoModule(t *testing.T) {
	ui := cli.NewMockUi()
	c := &Command{Command: base.NewCommand(hclog.NewNullLogger(), ui), Fs: afero.NewMemMapFs()}

	assert.Equal(t, 1, c.Run([]string{"-dir", "/tmp/loose"}))
	assert.Contains(t, ui.ErrorWriter.String(), "no go.mod found")
}
