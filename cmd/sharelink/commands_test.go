package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PUBLIC_APP_URL", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "catalog", "2vxsx-fae", "--base-url", "https://sarees.example/app/", "--type", "wholesale")

	require.NoError(t, err)
	assert.Equal(t, "https://sarees.example/app/#/public-catalog/2vxsx-fae/wholesale\n", out)
}

func TestCatalog_All(t *testing.T) {
	out, err := run(t, "catalog", "2vxsx-fae", "--base-url", "https://sarees.example/", "--all")

	require.NoError(t, err)
	assert.Equal(t,
		"Retail     https://sarees.example/#/public-catalog/2vxsx-fae/retail\n"+
			"Wholesale  https://sarees.example/#/public-catalog/2vxsx-fae/wholesale\n"+
			"Direct     https://sarees.example/#/public-catalog/2vxsx-fae/direct\n",
		out)
}

func TestCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no base url", args: []string{"catalog", "2vxsx-fae"}, wantErr: "PUBLIC_APP_URL"},
		{name: "bad principal", args: []string{"catalog", "weaver-1", "--base-url", "https://sarees.example/"}, wantErr: "invalid weaver identity"},
		{name: "unknown type", args: []string{"catalog", "2vxsx-fae", "--base-url", "https://sarees.example/", "--type", "vip"}, wantErr: "unknown customer type"},
		{name: "unknown identity format", args: []string{"catalog", "2vxsx-fae", "--base-url", "https://sarees.example/", "--identity", "email"}, wantErr: "unknown identity format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalog_OpaqueIdentity(t *testing.T) {
	out, err := run(t, "catalog", "weaver-1", "--base-url", "https://sarees.example/", "--identity", "opaque", "-t", "direct")

	require.NoError(t, err)
	assert.Equal(t, "https://sarees.example/#/public-catalog/weaver-1/direct\n", out)
}

func TestProduct(t *testing.T) {
	out, err := run(t, "product", "2vxsx-fae", "42", "--base-url", "https://sarees.example/")
	require.NoError(t, err)
	assert.Equal(t, "https://sarees.example/#/public-product/2vxsx-fae/42/retail\n", out)

	_, err = run(t, "product", "2vxsx-fae", "042", "--base-url", "https://sarees.example/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid product id")
}

func TestParse(t *testing.T) {
	out, err := run(t, "parse", "https://sarees.example/#/public-product/2vxsx-fae/7/gold")

	require.NoError(t, err)
	assert.Contains(t, out, "kind:          product\n")
	assert.Contains(t, out, "product id:    7\n")
	assert.Contains(t, out, `customer type: retail (unrecognised "gold")`)
}

func TestParse_Invalid(t *testing.T) {
	_, err := run(t, "parse", "https://sarees.example/#/public-catalog/nope/retail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog link")

	_, err = run(t, "parse", "https://sarees.example/#/settings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a share link")
}

func TestPrice(t *testing.T) {
	out, err := run(t, "price", "--retail", "12000", "--wholesale", "9500", "--direct", "11000", "--type", "direct")
	require.NoError(t, err)
	assert.Equal(t, "₹11,000\n", out)

	out, err = run(t, "price", "--retail", "12000", "--wholesale", "9500", "--direct", "11000", "--all")
	require.NoError(t, err)
	assert.Equal(t, "Retail     ₹12,000\nWholesale  ₹9,500\nDirect     ₹11,000\n", out)

	_, err = run(t, "price", "--retail", "-1")
	require.Error(t, err)
}
