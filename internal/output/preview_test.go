package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/ibeslink/internal/frame"
)

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	Preview(&buf, linkFixture(), 2)

	out := buf.String()
	assert.Contains(t, out, "GVKEY")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "MSFT")
	assert.NotContains(t, out, "IBM")
	assert.True(t, strings.HasSuffix(out, "(3 rows)\n"))
}

func TestPreview_Empty(t *testing.T) {
	var buf bytes.Buffer
	Preview(&buf, frame.New([]string{"gvkey"}, nil), 10)
	assert.Equal(t, "(0 rows)\n", buf.String())
}
