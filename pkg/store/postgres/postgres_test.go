package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jwoglom/djtree/pkg/database"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/store/postgres"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	// Use environment variables or defaults for test DB
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "djtree"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

func TestStore_PersonsAndNames(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := postgres.New(getTestDB(t), getTestLogger())
	treeID := uuid.New()

	// Create two persons and verify list order and tree isolation
	first, err := s.CreatePerson(ctx, treeID, models.CreatePersonRequest{IsLiving: true})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, models.GenderUnknown, first.Gender)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := s.CreatePerson(ctx, treeID, models.CreatePersonRequest{Gender: models.GenderFemale, IsLiving: true})
	require.NoError(t, err)

	persons, err := s.ListPersons(ctx, treeID)
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, first.ID, persons[0].ID)
	assert.Equal(t, second.ID, persons[1].ID)

	otherTree, err := s.ListPersons(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, otherTree)

	// Find-or-create a name and link it
	found, err := s.FindName(ctx, treeID, "John", "", "Smith")
	require.NoError(t, err)
	assert.Nil(t, found)

	name, err := s.CreateName(ctx, treeID, models.CreateNameRequest{First: "John", Last: "Smith"})
	require.NoError(t, err)

	found, err = s.FindName(ctx, treeID, "John", "", "Smith")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, name.ID, found.ID)

	link, err := s.LinkPersonName(ctx, treeID, first.ID, name.ID, models.NameTypeOther)
	require.NoError(t, err)

	// Linking again is a no-op returning the existing row
	again, err := s.LinkPersonName(ctx, treeID, first.ID, name.ID, models.NameTypeBirth)
	require.NoError(t, err)
	assert.Equal(t, link.ID, again.ID)
	assert.Equal(t, models.NameTypeOther, again.Type)

	// Gender update and death marker round-trip through List
	require.NoError(t, s.UpdatePersonGender(ctx, treeID, first.ID, models.GenderMale))
	require.NoError(t, s.MarkDeceased(ctx, treeID, first.ID))

	birthDate := time.Date(1980, time.May, 3, 0, 0, 0, 0, time.UTC)
	_, err = s.CreateLifeEvent(ctx, treeID, models.CreateLifeEventRequest{
		PersonID: first.ID,
		Kind:     models.EventBirth,
		Date:     birthDate,
		Location: "Boston, MA",
	})
	require.NoError(t, err)

	persons, err = s.ListPersons(ctx, treeID)
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, models.GenderMale, persons[0].Gender)
	assert.False(t, persons[0].IsLiving)
	require.Len(t, persons[0].Names, 1)
	assert.Equal(t, "John", persons[0].Names[0].First)
	require.NotNil(t, persons[0].Birth)
	assert.True(t, persons[0].Birth.Date.Equal(birthDate))
	assert.Nil(t, persons[1].Birth)
}

func TestStore_LifeEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := postgres.New(getTestDB(t), getTestLogger())
	treeID := uuid.New()

	p, err := s.CreatePerson(ctx, treeID, models.CreatePersonRequest{IsLiving: true})
	require.NoError(t, err)

	date1 := time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	date2 := time.Date(1910, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, d := range []time.Time{date1, date2} {
		_, err = s.CreateLifeEvent(ctx, treeID, models.CreateLifeEventRequest{
			PersonID:    p.ID,
			Kind:        models.EventImmigration,
			Date:        d,
			FromCountry: "Ireland",
			ToCountry:   "USA",
		})
		require.NoError(t, err)
	}

	byKind, err := s.FindLifeEvent(ctx, treeID, p.ID, models.EventImmigration)
	require.NoError(t, err)
	require.NotNil(t, byKind)
	assert.True(t, byKind.Date.Equal(date1))
	assert.Equal(t, "Ireland", byKind.FromCountry)

	onDate, err := s.FindLifeEventOnDate(ctx, treeID, p.ID, models.EventImmigration, date2)
	require.NoError(t, err)
	require.NotNil(t, onDate)
	assert.True(t, onDate.Date.Equal(date2))

	missing, err := s.FindLifeEvent(ctx, treeID, p.ID, models.EventDeath)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_CoupleEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := postgres.New(getTestDB(t), getTestLogger())
	treeID := uuid.New()

	a, err := s.CreatePerson(ctx, treeID, models.CreatePersonRequest{IsLiving: true})
	require.NoError(t, err)
	b, err := s.CreatePerson(ctx, treeID, models.CreatePersonRequest{IsLiving: true})
	require.NoError(t, err)

	date := time.Date(1950, time.June, 1, 0, 0, 0, 0, time.UTC)
	pair, err := s.CreateCoupleEventPair(ctx, treeID, models.CreateCoupleEventRequest{
		Kind:          models.CoupleMarriage,
		PersonID:      a.ID,
		OtherPersonID: b.ID,
		Date:          date,
		Location:      "Boston, MA",
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, pair.Forward.PersonID)
	assert.Equal(t, a.ID, pair.Mirror.OtherPersonID)
	assert.False(t, pair.Forward.CreatedAt.IsZero())

	forward, err := s.FindCoupleEvent(ctx, treeID, models.CoupleMarriage, a.ID, b.ID, date)
	require.NoError(t, err)
	require.NotNil(t, forward)
	assert.False(t, forward.Ended)

	mirror, err := s.FindCoupleEvent(ctx, treeID, models.CoupleMarriage, b.ID, a.ID, date)
	require.NoError(t, err)
	require.NotNil(t, mirror)

	count, err := s.CloseOpenMarriages(ctx, treeID, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	forward, err = s.FindCoupleEvent(ctx, treeID, models.CoupleMarriage, a.ID, b.ID, date)
	require.NoError(t, err)
	require.NotNil(t, forward)
	assert.True(t, forward.Ended)

	count, err = s.CloseOpenMarriages(ctx, treeID, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_ParentChildLinks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := postgres.New(getTestDB(t), getTestLogger())
	treeID := uuid.New()

	parent, err := s.CreatePerson(ctx, treeID, models.CreatePersonRequest{IsLiving: true})
	require.NoError(t, err)
	child, err := s.CreatePerson(ctx, treeID, models.CreatePersonRequest{IsLiving: true})
	require.NoError(t, err)

	has, err := s.HasParentChildLink(ctx, treeID, parent.ID, child.ID)
	require.NoError(t, err)
	assert.False(t, has)

	link, err := s.CreateParentChildLink(ctx, treeID, parent.ID, child.ID)
	require.NoError(t, err)

	has, err = s.HasParentChildLink(ctx, treeID, parent.ID, child.ID)
	require.NoError(t, err)
	assert.True(t, has)

	again, err := s.CreateParentChildLink(ctx, treeID, parent.ID, child.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, again.ID)

	_, err = s.CreateParentChildLink(ctx, treeID, parent.ID, parent.ID)
	assert.Error(t, err)
}

func TestStore_Attachments(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := postgres.New(getTestDB(t), getTestLogger())
	treeID := uuid.New()

	p, err := s.CreatePerson(ctx, treeID, models.CreatePersonRequest{IsLiving: true})
	require.NoError(t, err)

	created, err := s.CreateAttachment(ctx, treeID, models.CreateAttachmentRequest{
		PersonID: p.ID,
		FileName: "will.pdf",
		FileType: models.FileTypeDocument,
	})
	require.NoError(t, err)

	// Upserting the same file keeps the row and refreshes the type
	again, err := s.CreateAttachment(ctx, treeID, models.CreateAttachmentRequest{
		PersonID: p.ID,
		FileName: "will.pdf",
		FileType: models.FileTypePhoto,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	found, err := s.FindAttachment(ctx, treeID, p.ID, "will.pdf")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.FileTypePhoto, found.FileType)

	list, err := s.ListAttachments(ctx, treeID, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteAttachment(ctx, treeID, created.ID))

	found, err = s.FindAttachment(ctx, treeID, p.ID, "will.pdf")
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.Error(t, s.DeleteAttachment(ctx, treeID, created.ID))
}
