package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/listview/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	got := version.String("listview")

	assert.Contains(t, got, "listview ")
	assert.Contains(t, got, "commit: ")
	assert.Contains(t, got, "built: "+version.Date)
}
