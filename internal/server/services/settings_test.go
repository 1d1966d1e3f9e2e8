package services

import (
	"testing"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/server/feed"
	"github.com/dmitrijs2005/logitrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	pub := &fakePublisher{}
	s := NewSettingService(db, rm, pub)

	admin := as(models.RoleAdmin, "a", "admin@logitrack.com")
	staff := as(models.RoleStaff, "s", "s@logitrack.com")

	loc, err := s.Add(admin, "locations", "  Riga Port ")
	require.NoError(t, err)
	assert.Equal(t, "Riga Port", loc.Name)

	_, err = s.Add(admin, "Types", "40HC")
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, feed.Locations, pub.events[0].Collection)
	assert.Equal(t, feed.Types, pub.events[1].Collection)

	got, err := s.List(staff, "locations")
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = s.Add(admin, "locations", "   ")
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.Add(admin, "ports", "Tallinn")
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.List(staff, "ports")
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.Add(staff, "locations", "Tallinn")
	require.ErrorIs(t, err, common.ErrorForbidden)

	require.ErrorIs(t, s.Delete(staff, "locations", loc.ID), common.ErrorForbidden)
	require.NoError(t, s.Delete(admin, "locations", loc.ID))
	require.ErrorIs(t, s.Delete(admin, "locations", loc.ID), common.ErrorNotFound)
	assert.Equal(t, feed.OpDeleted, pub.events[len(pub.events)-1].Op)
}
