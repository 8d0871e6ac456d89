package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type row struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&row{}))
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, db, base.DB(nil))
}

func TestBind(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	assert.Same(t, db, base.Bind(nil).db)

	tx := db.Begin()
	defer tx.Rollback()
	assert.Same(t, tx, base.Bind(tx).db)
}

func TestPage(t *testing.T) {
	db := newTestDB(t)
	for _, name := range []string{"ace", "bo", "cy", "di", "ed"} {
		require.NoError(t, db.Create(&row{Name: name}).Error)
	}

	var got []row
	total, err := Page(db.Model(&row{}).Where("name <> ?", "ed"), "name DESC", 2, 1, &got)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, got, 2)
	assert.Equal(t, "cy", got[0].Name)
	assert.Equal(t, "bo", got[1].Name)

	var none []row
	total, err = Page(db.Model(&row{}).Where("name = ?", "zed"), "", 10, 0, &none)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "", LikePattern("   "))
	assert.Equal(t, "%cat%", LikePattern(" Cat "))
	assert.Equal(t, `%100\% \_a\\b%`, LikePattern(`100% _a\b`))
}

func TestMatchAny_TreatsWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	for _, name := range []string{"100% tabby", "snow_ball", "Rex"} {
		require.NoError(t, db.Create(&row{Name: name}).Error)
	}

	find := func(term string) []string {
		var got []row
		require.NoError(t, MatchAny(db.Model(&row{}), term, "name").Order("id").Find(&got).Error)
		names := make([]string, 0, len(got))
		for _, r := range got {
			names = append(names, r.Name)
		}
		return names
	}

	assert.Equal(t, []string{"snow_ball"}, find("_"))
	assert.Equal(t, []string{"100% tabby"}, find("%"))
	assert.Equal(t, []string{"Rex"}, find("REX"))
	assert.Len(t, find(""), 3)
}
