package html

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

func TestSupportedContentTypes(t *testing.T) {
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, New().SupportedContentTypes())
}

func TestExtract(t *testing.T) {
	page := `<html><head><title>Help</title><style>p{color:red}</style></head>
<body>
<nav>Home | About</nav>
<h1>Returns</h1>
<p>Items can be returned within <b>30 days</b>.</p>
<script>alert("x")</script>
<ul><li>Keep the receipt</li><li>Use original packaging</li></ul>
<footer>Copyright</footer>
</body></html>`

	text, err := New().Extract(context.Background(), []byte(page))

	require.NoError(t, err)
	assert.Contains(t, text, "# Returns")
	assert.Contains(t, text, "**30 days**")
	assert.Contains(t, text, "Keep the receipt")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color:red")
	assert.NotContains(t, text, "Home | About")
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "\n\n\n")
}

func TestExtract_Fragment(t *testing.T) {
	text, err := New().Extract(context.Background(), []byte("<p>Just a paragraph.</p>"))

	require.NoError(t, err)
	assert.Equal(t, "Just a paragraph.", text)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte{'<', 'p', '>', 0xff})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidEncoding))
}

func TestTidy(t *testing.T) {
	assert.Equal(t, "a\n\nb", tidy("a  \n\n\n\nb\t"))
}
