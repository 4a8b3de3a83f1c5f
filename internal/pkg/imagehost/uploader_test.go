package imagehost_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"catalogadmin/internal/domain"
	apperror "catalogadmin/internal/errors"
	"catalogadmin/internal/pkg/imagehost"
)

func TestUploader_SendsMultipartWithPreset(t *testing.T) {
	t.Parallel()

	var preset, filename, contentType string
	var data []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		preset = r.FormValue("upload_preset")
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		filename = header.Filename
		contentType = header.Header.Get("Content-Type")
		data, err = io.ReadAll(f)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://img.example/chair.png","url":"http://img.example/chair.png"}`))
	}))
	t.Cleanup(ts.Close)

	up, err := imagehost.NewUploader(ts.URL, "instagramimages", ts.Client())
	require.NoError(t, err)

	ref, err := up.Upload(context.Background(), domain.FileUpload{Filename: "chair.png", ContentType: "image/png", Data: []byte("PNGDATA")})
	require.NoError(t, err)
	require.Equal(t, "https://img.example/chair.png", ref)
	require.Equal(t, "instagramimages", preset)
	require.Equal(t, "chair.png", filename)
	require.Equal(t, "image/png", contentType)
	require.Equal(t, []byte("PNGDATA"), data)
}

func TestUploader_FallsBackToURL(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"http://img.example/a.png"}`))
	}))
	t.Cleanup(ts.Close)

	up, err := imagehost.NewUploader(ts.URL, "", ts.Client())
	require.NoError(t, err)

	ref, err := up.Upload(context.Background(), domain.FileUpload{Filename: "a.png", Data: []byte("a")})
	require.NoError(t, err)
	require.Equal(t, "http://img.example/a.png", ref)
}

func TestUploader_EmptyReferenceIsRemoteError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(ts.Close)

	up, err := imagehost.NewUploader(ts.URL, "", ts.Client())
	require.NoError(t, err)

	_, err = up.Upload(context.Background(), domain.FileUpload{Filename: "a.png", Data: []byte("a")})
	require.True(t, apperror.IsRemote(err))
}

func TestUploader_ErrorStatusCarriesMessage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	t.Cleanup(ts.Close)

	up, err := imagehost.NewUploader(ts.URL, "missing", ts.Client())
	require.NoError(t, err)

	_, err = up.Upload(context.Background(), domain.FileUpload{Filename: "a.png", Data: []byte("a")})
	var remote *apperror.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, http.StatusBadRequest, remote.Status)
	require.Equal(t, "Upload preset not found", remote.Msg)
}

func TestUploader_RejectsEmptyFile(t *testing.T) {
	up, err := imagehost.NewUploader("http://localhost", "", nil)
	require.NoError(t, err)

	_, err = up.Upload(context.Background(), domain.FileUpload{Filename: "a.png"})
	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
}
