package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNameAcceptsKnownTypes(t *testing.T) {
	for contentType, ext := range allowedPhotoTypes {
		name, ok := objectName(contentType)
		require.True(t, ok, contentType)
		assert.True(t, strings.HasSuffix(name, ext))
	}
}

func TestObjectNameRejectsUnknownTypes(t *testing.T) {
	for _, contentType := range []string{"image/gif", "application/pdf", "text/html", ""} {
		_, ok := objectName(contentType)
		assert.False(t, ok, contentType)
	}
}

func TestObjectNamesAreUnique(t *testing.T) {
	a, _ := objectName("image/jpeg")
	b, _ := objectName("image/jpeg")
	assert.NotEqual(t, a, b)
}

func TestPhotoURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:9000/report-photos/abc.jpg",
		photoURL("http://localhost:9000/", "report-photos", "abc.jpg"))
	assert.Equal(t,
		"https://cdn.example.com/report-photos/abc.png",
		photoURL("https://cdn.example.com", "report-photos", "abc.png"))
}
