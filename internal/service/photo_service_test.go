package service_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
	"github.com/otoservis/garage-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPhotoEnv(t *testing.T) (*testEnv, *service.PhotoService, string) {
	t.Helper()
	env := newTestEnv(t)
	dir := t.TempDir()
	photos := service.NewPhotoService(
		repository.NewWorkOrderPhotoRepository(env.db),
		repository.NewWorkOrderRepository(env.db),
		&config.UploadConfig{Dir: dir, MaxPhotoSizeMB: 1},
		zap.NewNop(),
	)
	return env, photos, dir
}

func TestPhotoUpload(t *testing.T) {
	env, photos, dir := newPhotoEnv(t)
	ctx := context.Background()
	order := createTestOrder(t, env)

	photo, err := photos.Upload(ctx, order.ID, "engine-before.JPG", []byte("fake image"), domain.PhotoBefore, "intake state")
	require.NoError(t, err)

	assert.Equal(t, order.ID, photo.WorkOrderID)
	assert.Equal(t, "engine-before.JPG", photo.OriginalFilename)
	assert.Equal(t, domain.PhotoBefore, photo.Category)
	assert.Equal(t, "intake state", photo.Caption)
	assert.Nil(t, photo.UploadedBy)

	// The file lands under the order's own directory with a generated name
	stored := filepath.Join(dir, "work_orders", strconv.FormatUint(uint64(order.ID), 10), photo.Filename)
	content, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte("fake image"), content))
	assert.NotEqual(t, "engine-before.JPG", photo.Filename)
}

func TestPhotoUploadRecordsUploader(t *testing.T) {
	env, photos, _ := newPhotoEnv(t)
	order := createTestOrder(t, env)

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:   7,
		Username: "usta",
		Role:     domain.RoleTechnician,
	})
	photo, err := photos.Upload(ctx, order.ID, "after.png", []byte("img"), domain.PhotoAfter, "")
	require.NoError(t, err)

	require.NotNil(t, photo.UploadedBy)
	assert.Equal(t, uint(7), *photo.UploadedBy)
}

func TestPhotoUploadValidation(t *testing.T) {
	env, photos, _ := newPhotoEnv(t)
	ctx := context.Background()
	order := createTestOrder(t, env)

	_, err := photos.Upload(ctx, order.ID, "report.pdf", []byte("doc"), domain.PhotoOther, "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	oversized := make([]byte, 1024*1024+1)
	_, err = photos.Upload(ctx, order.ID, "big.jpg", oversized, domain.PhotoOther, "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = photos.Upload(ctx, order.ID, "odd.jpg", []byte("img"), domain.PhotoCategory("selfie"), "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = photos.Upload(ctx, 9999, "lost.jpg", []byte("img"), domain.PhotoOther, "")
	assert.ErrorIs(t, err, service.ErrWorkOrderNotFound)
}

func TestPhotoListAndDelete(t *testing.T) {
	env, photos, dir := newPhotoEnv(t)
	ctx := context.Background()
	order := createTestOrder(t, env)

	first, err := photos.Upload(ctx, order.ID, "one.jpg", []byte("1"), domain.PhotoBefore, "")
	require.NoError(t, err)
	second, err := photos.Upload(ctx, order.ID, "two.webp", []byte("2"), domain.PhotoAfter, "")
	require.NoError(t, err)

	listed, err := photos.ListByWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)

	stored := filepath.Join(dir, "work_orders", strconv.FormatUint(uint64(order.ID), 10), first.Filename)
	require.NoError(t, photos.Delete(ctx, first.ID))

	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err), "file should be removed from disk")

	listed, err = photos.ListByWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	assert.ErrorIs(t, photos.Delete(ctx, first.ID), service.ErrPhotoNotFound)
}
