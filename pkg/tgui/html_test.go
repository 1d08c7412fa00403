package tgui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEsc(t *testing.T) {
	t.Parallel()

	require.Equal(t, H(`a &amp; b &lt;c&gt; &quot;d&quot; 'e'`), Esc(`a & b <c> "d" 'e'`))
	require.Equal(t, H(""), Esc(""))
}

func TestLink(t *testing.T) {
	t.Parallel()

	got := Link(`R&D "up"`, "https://x.test/a?b=1&c=2")
	require.Equal(t, H(`<a href="https://x.test/a?b=1&amp;c=2">R&amp;D &quot;up&quot;</a>`), got)
}

func TestB(t *testing.T) {
	t.Parallel()

	require.Equal(t, H("<b>x&lt;y</b>"), B("x<y"))
}
