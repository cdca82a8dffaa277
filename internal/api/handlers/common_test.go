package handlers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    *int64
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "   ", want: nil},
		{in: "1500000", want: ptr(int64(1500000))},
		{in: "1,500,000", want: ptr(int64(1500000))},
		{in: " 0 ", want: ptr(int64(0))},
		{in: "-1", wantErr: true},
		{in: "12.5", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePrice(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSafeReturn(t *testing.T) {
	assert.Equal(t, "/products?search=x", safeReturn("/products?search=x"))
	assert.Equal(t, "/", safeReturn(""))
	assert.Equal(t, "/", safeReturn("https://evil.example"))
	assert.Equal(t, "/", safeReturn("//evil.example"))
	assert.Equal(t, "/", safeReturn(`/\evil.example`))
}

func TestReturnPathDropsNotice(t *testing.T) {
	u, err := url.Parse("/products?notice=created&search=%EB%A7%A5")
	require.NoError(t, err)
	assert.Equal(t, "/products?search=%EB%A7%A5", returnPath(u))

	u, err = url.Parse("/?notice=deleted")
	require.NoError(t, err)
	assert.Equal(t, "/", returnPath(u))
}

func TestParseID(t *testing.T) {
	assert.Equal(t, int64(7), parseID("7"))
	assert.Equal(t, int64(0), parseID(""))
	assert.Equal(t, int64(0), parseID("-3"))
	assert.Equal(t, int64(0), parseID("x"))
}

func TestFilterFrom(t *testing.T) {
	form := map[string]string{"search": "  맥북 ", "status": "bogus"}
	f := filterFrom(func(k string) string { return form[k] })

	assert.Equal(t, "맥북", f.Search)
	assert.Equal(t, "", f.Status)
}

func ptr[T any](v T) *T { return &v }
