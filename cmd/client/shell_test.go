package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinyakov/profilepanel/internal/client/account"
	"github.com/atinyakov/profilepanel/internal/client/preview"
	"github.com/atinyakov/profilepanel/internal/client/profile"
	"github.com/atinyakov/profilepanel/internal/client/session"
	"github.com/atinyakov/profilepanel/internal/client/storage"
	"github.com/atinyakov/profilepanel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadImage(t *testing.T) {
	img, err := loadImage(writeFile(t, "avatar.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "avatar.png", img.Name)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, int64(len(pngHeader)), img.Size)

	_, err = loadImage(writeFile(t, "notes.txt", []byte("plain text")))
	assert.ErrorIs(t, err, errNotImage)

	_, err = loadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, err = loadImage(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
}

func TestLoadImage_TooLargeIsNotRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(profile.MaxImageSize+1))
	require.NoError(t, f.Close())

	img, err := loadImage(path)
	require.NoError(t, err)
	assert.Equal(t, profile.MaxImageSize+1, img.Size)
	assert.Nil(t, img.Data)
}

type uploaderFunc func(ctx context.Context, file models.ImageFile, progress storage.ProgressFunc) (string, error)

func (f uploaderFunc) Upload(ctx context.Context, file models.ImageFile, progress storage.ProgressFunc) (string, error) {
	return f(ctx, file, progress)
}

func TestShell_EditUploadAndSubmit(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/update/u1", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(models.User{ID: "u1", Username: gotBody["username"], ProfilePicture: gotBody["profilePicture"]})
	}))
	defer srv.Close()

	sess := session.NewStore("", zap.NewNop())
	sess.SignInSuccess(models.User{ID: "u1", Username: "olduser1"})

	panel := profile.New(profile.Deps{
		Session: sess,
		Uploader: uploaderFunc(func(_ context.Context, file models.ImageFile, progress storage.ProgressFunc) (string, error) {
			progress(file.Size, file.Size)
			return "https://cdn/" + file.Name, nil
		}),
		Account:  account.NewClient(srv.Client(), srv.URL, zap.NewNop()),
		Previews: preview.NewStore(),
	})

	imgPath := writeFile(t, "me.png", pngHeader)
	input := strings.Join([]string{
		"submit",
		"set username newuser1",
		"set nickname x",
		"image " + imgPath,
		"wait",
		"set password hunter22",
		"show",
		"submit",
		"exit",
	}, "\n")

	var out bytes.Buffer
	sh := &shell{panel: panel, session: sess, out: &out}
	sh.run(context.Background(), strings.NewReader(input))

	got := out.String()
	assert.Contains(t, got, "No changes Made")
	assert.Contains(t, got, `Unknown field "nickname"`)
	assert.Contains(t, got, "Uploading me.png")
	assert.Contains(t, got, "Upload:  done (100%)")
	assert.Contains(t, got, "Draft:   password = ********")
	assert.NotContains(t, got, "hunter22")
	assert.Contains(t, got, "User's profile updated successfully")
	assert.Contains(t, got, "Bye")

	assert.Equal(t, "https://cdn/me.png", gotBody["profilePicture"])
	assert.Equal(t, "newuser1", sess.CurrentUser().Username)
}

func TestShell_RejectsLargeAndNonImages(t *testing.T) {
	sess := session.NewStore("", zap.NewNop())
	sess.SignInSuccess(models.User{ID: "u1"})
	calls := 0
	panel := profile.New(profile.Deps{
		Session: sess,
		Uploader: uploaderFunc(func(context.Context, models.ImageFile, storage.ProgressFunc) (string, error) {
			calls++
			return "", nil
		}),
		Previews: preview.NewStore(),
	})

	big := filepath.Join(t.TempDir(), "big.png")
	f, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(3*1024*1024))
	require.NoError(t, f.Close())

	var out bytes.Buffer
	sh := &shell{panel: panel, session: sess, out: &out}
	sh.run(context.Background(), strings.NewReader("image "+big+"\nimage "+writeFile(t, "a.txt", []byte("hello"))+"\n"))
	panel.Wait()

	assert.Contains(t, out.String(), "Image must be less than 2MB")
	assert.Contains(t, out.String(), "file is not an image")
	assert.Zero(t, calls)
}
