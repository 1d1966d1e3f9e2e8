package services

import (
	"context"
	"encoding/csv"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	key  string
	body []byte
	err  error
}

func (f *fakeStore) Put(_ context.Context, key string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key, f.body = key, body
	return "http://minio/" + key + "?X-Amz-Signature=x", nil
}

var fixedNow = time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)

func newContainerService(t *testing.T) (*ContainerService, *fakeRepoManager, *fakePublisher, *fakeStore) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	pub := &fakePublisher{}
	store := &fakeStore{}
	s := NewContainerService(db, rm, pub, store)
	s.now = func() time.Time { return fixedNow }
	return s, rm, pub, store
}

func TestContainers_Add(t *testing.T) {
	s, rm, pub, _ := newContainerService(t)
	ctx := as(models.RoleLogistics, "u1", "dispatch@logitrack.com")

	c, err := s.Add(ctx, NewContainer{
		ContainerNumber: " msku1234567 ",
		TareWeight:      "2200",
		Type:            "40hc",
		BookingNumber:   "bk-1",
		Location:        "Riga",
	})
	require.NoError(t, err)
	assert.Equal(t, "MSKU1234567", c.ContainerNumber)
	assert.Equal(t, "40HC", c.Type)
	assert.Equal(t, "BK-1", c.BookingNumber)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, "dispatch", c.LastUpdatedBy)
	assert.Equal(t, fixedNow, c.CreatedAt)
	require.Len(t, rm.containers.rows, 1)

	require.Len(t, pub.events, 1)
	assert.Equal(t, feed.Containers, pub.events[0].Collection)
	assert.Equal(t, feed.OpCreated, pub.events[0].Op)
	assert.Equal(t, c.ID, pub.events[0].ID)

	_, err = s.Add(ctx, NewContainer{ContainerNumber: "MSKU1234567"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Equal(t, "container MSKU1234567 already exists", err.Error())
	assert.Len(t, pub.events, 1)
}

func TestContainers_AddValidationAndRole(t *testing.T) {
	s, rm, _, _ := newContainerService(t)

	_, err := s.Add(as(models.RoleAdmin, "a", "admin@logitrack.com"), NewContainer{ContainerNumber: "   "})
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Add(as(models.RoleDriver, "d", "driver@logitrack.com"), NewContainer{ContainerNumber: "X1"})
	require.ErrorIs(t, err, common.ErrorForbidden)

	_, err = s.Add(context.Background(), NewContainer{ContainerNumber: "X1"})
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	rm.containers.existsErr = errBoom{}
	_, err = s.Add(as(models.RoleAdmin, "a", "admin@logitrack.com"), NewContainer{ContainerNumber: "X1"})
	require.Error(t, err)
	assert.Empty(t, rm.containers.rows)
}

func TestContainers_List(t *testing.T) {
	s, rm, _, _ := newContainerService(t)
	rm.containers.rows = []*models.Container{{ID: "c-1"}}

	got, err := s.List(as(models.RoleStaff, "u", "staff@logitrack.com"), "  msku ")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "msku", rm.containers.lastQuery)
}

func TestContainers_UpdateStatus(t *testing.T) {
	s, rm, pub, _ := newContainerService(t)
	rm.containers.rows = []*models.Container{{ID: "c-1", ContainerNumber: "MSKU1", Status: models.StatusPending}}
	ctx := as(models.RoleDriver, "d1", "truck7@logitrack.com")

	c, err := s.UpdateStatus(ctx, "c-1", "in transit")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, c.Status)
	assert.Equal(t, "truck7", c.LastUpdatedBy)
	assert.Equal(t, fixedNow, c.UpdatedAt)
	require.Len(t, pub.events, 1)
	assert.Equal(t, feed.OpUpdated, pub.events[0].Op)

	_, err = s.UpdateStatus(ctx, "c-1", "Lost at sea")
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.UpdateStatus(ctx, "c-404", "Docked")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.UpdateStatus(as(models.RoleOperator, "o", "op@logitrack.com"), "c-1", "Docked")
	require.ErrorIs(t, err, common.ErrorForbidden)
}

func TestContainers_Delete(t *testing.T) {
	s, rm, pub, _ := newContainerService(t)
	rm.containers.rows = []*models.Container{{ID: "c-1"}}

	require.ErrorIs(t, s.Delete(as(models.RoleLogistics, "l", "l@logitrack.com"), "c-1"), common.ErrorForbidden)

	admin := as(models.RoleAdmin, "a", "admin@logitrack.com")
	require.NoError(t, s.Delete(admin, "c-1"))
	assert.Empty(t, rm.containers.rows)
	require.Len(t, pub.events, 1)
	assert.Equal(t, feed.OpDeleted, pub.events[0].Op)

	require.ErrorIs(t, s.Delete(admin, "c-1"), common.ErrorNotFound)
	assert.Len(t, pub.events, 1)
}

func TestContainers_Export(t *testing.T) {
	s, rm, _, store := newContainerService(t)
	rm.containers.rows = []*models.Container{
		{ID: "c-1", ContainerNumber: "MSKU1", Type: "40HC", Status: models.StatusDocked, LastUpdatedBy: "ops", CreatedAt: fixedNow, UpdatedAt: fixedNow},
		{ID: "c-2", ContainerNumber: "TGHU2", Location: "Port, Riga", Status: models.StatusInTransit, CreatedAt: fixedNow, UpdatedAt: fixedNow},
	}

	exp, err := s.Export(as(models.RoleLogistics, "l", "l@logitrack.com"), "")
	require.NoError(t, err)
	assert.Equal(t, 2, exp.Rows)
	assert.Regexp(t, regexp.MustCompile(`^exports/2025/07/04/[0-9a-f-]{36}\.csv$`), exp.Key)
	assert.Equal(t, store.key, exp.Key)
	assert.Contains(t, exp.URL, exp.Key)
	assert.Equal(t, fixedNow.Add(15*time.Minute), exp.ExpiresAt)

	records, err := csv.NewReader(strings.NewReader(string(store.body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, containerCSVHeader, records[0])
	assert.Equal(t, "MSKU1", records[1][0])
	assert.Equal(t, "Port, Riga", records[2][4])
	assert.Equal(t, "2025-07-04T10:00:00Z", records[1][7])
}

func TestContainers_ExportErrors(t *testing.T) {
	s, rm, _, store := newContainerService(t)
	ctx := as(models.RoleAdmin, "a", "admin@logitrack.com")

	_, err := s.Export(as(models.RoleDriver, "d", "d@logitrack.com"), "")
	require.ErrorIs(t, err, common.ErrorForbidden)

	store.err = errors.New("bucket missing")
	_, err = s.Export(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error uploading export: bucket missing")

	rm.containers.listErr = errBoom{}
	_, err = s.Export(ctx, "")
	require.Error(t, err)
}
