package staging

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lookbook-service/internal/models"
)

func newTestStager(t *testing.T) *Stager {
	t.Helper()
	return NewStager(t.TempDir(), Limits{
		MaxPerPost:   4,
		MaxImageSize: 10 * 1024 * 1024,
		MaxVideoSize: 50 * 1024 * 1024,
	})
}

func incoming(name, contentType string, size int64) Incoming {
	return Incoming{
		Filename:    name,
		ContentType: contentType,
		Size:        size,
		Reader:      strings.NewReader(strings.Repeat("x", int(size))),
	}
}

func TestStageAcceptsValidFiles(t *testing.T) {
	s := newTestStager(t)

	staged, rejected, err := s.Stage(0, 0, []Incoming{
		incoming("look.jpg", "image/jpeg", 1024),
		incoming("walk.mp4", "video/mp4", 2048),
	})

	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, staged, 2)
	assert.Equal(t, models.MediaTypeImage, staged[0].Type)
	assert.Equal(t, models.MediaTypeVideo, staged[1].Type)
	assert.NotEqual(t, staged[0].ID, staged[1].ID)

	ReleaseAll(staged)
}

func TestStageRejectsWholeBatchOverCountCap(t *testing.T) {
	s := newTestStager(t)

	// 2 remote media + 1 already staged leaves room for exactly 1 more
	staged, rejected, err := s.Stage(2, 1, []Incoming{
		incoming("a.jpg", "image/jpeg", 10),
		incoming("b.jpg", "image/jpeg", 10),
	})

	require.Error(t, err)
	assert.Empty(t, staged)
	assert.Empty(t, rejected)
}

func TestStageRejectsPerFileKeepingValidOnes(t *testing.T) {
	s := NewStager(t.TempDir(), Limits{MaxPerPost: 4, MaxImageSize: 100, MaxVideoSize: 200})

	staged, rejected, err := s.Stage(0, 0, []Incoming{
		incoming("ok.jpg", "image/jpeg", 50),
		incoming("huge.jpg", "image/jpeg", 500),
		incoming("notes.pdf", "application/pdf", 10),
	})

	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, "ok.jpg", staged[0].Filename)

	require.Len(t, rejected, 2)
	assert.Equal(t, "huge.jpg", rejected[0].Filename)
	assert.Equal(t, "notes.pdf", rejected[1].Filename)

	ReleaseAll(staged)
}

func TestStageVideoGetsLargerLimit(t *testing.T) {
	s := NewStager(t.TempDir(), Limits{MaxPerPost: 4, MaxImageSize: 100, MaxVideoSize: 1000})

	staged, rejected, err := s.Stage(0, 0, []Incoming{
		incoming("clip.mp4", "video/mp4", 500),
	})

	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, staged, 1)

	ReleaseAll(staged)
}

func TestStagedFileRoundTrip(t *testing.T) {
	s := newTestStager(t)

	staged, _, err := s.Stage(0, 0, []Incoming{
		{Filename: "look.jpg", ContentType: "image/jpeg", Size: 9, Reader: strings.NewReader("jpegbytes")},
	})
	require.NoError(t, err)
	require.Len(t, staged, 1)

	r, err := staged[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	r.Close()

	assert.Equal(t, "jpegbytes", string(data))
	assert.Equal(t, int64(9), staged[0].Size)

	staged[0].Release()
}

func TestReleaseIsIdempotentAndClosesHandle(t *testing.T) {
	s := newTestStager(t)

	staged, _, err := s.Stage(0, 0, []Incoming{incoming("a.jpg", "image/jpeg", 10)})
	require.NoError(t, err)
	f := staged[0]

	f.Release()
	f.Release()

	_, err = f.Open()
	assert.Error(t, err)
}

func TestStageEmptySelectionIsNoop(t *testing.T) {
	s := newTestStager(t)

	staged, rejected, err := s.Stage(4, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, staged)
	assert.Empty(t, rejected)
}
