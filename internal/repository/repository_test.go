package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gopherai-docqa/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Document{}, &model.ChatLog{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestDocumentRepositoryLifecycle(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))

	summary := "short summary"
	doc := &model.Document{
		Filename:         "0b7c.txt",
		OriginalFilename: "report.txt",
		FileType:         model.FileTypeTXT,
		UserID:           1,
		Summary:          &summary,
	}
	require.NoError(t, repo.Create(doc))
	require.NotZero(t, doc.ID)

	got, err := repo.GetByID(doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.FileTypeTXT, got.FileType)
	require.NotNil(t, got.Summary)
	assert.Equal(t, summary, *got.Summary)

	require.NoError(t, repo.UpdateOriginalFilename(doc.ID, "renamed.txt"))
	require.NoError(t, repo.UpdateSummary(doc.ID, "new summary"))
	got, err = repo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", got.OriginalFilename)
	assert.Equal(t, "0b7c.txt", got.Filename)
	assert.Equal(t, "new summary", *got.Summary)

	require.NoError(t, repo.Delete(doc.ID))
	got, err = repo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDocumentRepositoryUpdateMissing(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))
	assert.ErrorIs(t, repo.UpdateOriginalFilename(99, "x.txt"), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateSummary(99, "x"), gorm.ErrRecordNotFound)
}

func TestDocumentRepositoryListOrder(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))
	for i, owner := range []uint{1, 2, 1} {
		require.NoError(t, repo.Create(&model.Document{
			Filename:         fmt.Sprintf("f%d.txt", i),
			OriginalFilename: fmt.Sprintf("f%d.txt", i),
			FileType:         model.FileTypeTXT,
			UserID:           owner,
		}))
	}

	all, err := repo.List()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "f2.txt", all[0].Filename)
	assert.Equal(t, "f0.txt", all[2].Filename)
}

func TestChatLogRepositoryListsOldestFirst(t *testing.T) {
	repo := NewChatLogRepository(newTestDB(t))
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(&model.ChatLog{
			UserID:     7,
			DocumentID: 3,
			Question:   fmt.Sprintf("q%d", i),
			Answer:     fmt.Sprintf("a%d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(&model.ChatLog{UserID: 8, DocumentID: 3, Question: "other", Answer: "other"}))

	logs, err := repo.ListByUserAndDocument(7, 3, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "q0", logs[0].Question)
	assert.Equal(t, "q2", logs[2].Question)

	limited, err := repo.ListByUserAndDocument(7, 3, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestUserRepositoryLookups(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	user := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateAssigningRole(user))

	byName, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.True(t, byName.IsAdmin())

	byEmail, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := repo.GetByID(999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	second := &model.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateAssigningRole(second))
	assert.Equal(t, model.RoleUser, second.Role)
}
