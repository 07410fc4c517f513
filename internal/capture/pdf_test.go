package capture

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintPDF_RequiresURL(t *testing.T) {
	var buf bytes.Buffer
	err := PrintPDF(context.Background(), PDFOptions{}, &buf)
	assert.ErrorContains(t, err, "URL is required")
	assert.Zero(t, buf.Len())
}
