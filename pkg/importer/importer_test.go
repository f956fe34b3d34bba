package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwoglom/djtree/pkg/events"
	"github.com/jwoglom/djtree/pkg/matching"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/store"
	"github.com/jwoglom/djtree/pkg/store/memory"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func testImporter(st store.Store, emitter events.Emitter) *Importer {
	log := noopLogger()
	return New(log, st, matching.NewService(log), emitter, nil)
}

func writeFixture(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family.ged")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func runImport(t *testing.T, imp *Importer, path string, opts Options) *Report {
	t.Helper()
	report, err := imp.Run(context.Background(), path, opts)
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

func personByFirstName(t *testing.T, persons []*models.Person, first string) *models.Person {
	t.Helper()
	for _, p := range persons {
		for _, n := range p.Names {
			if n.First == first {
				return p
			}
		}
	}
	t.Fatalf("no person named %q", first)
	return nil
}

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// sampleFamily is a married couple with one child.
var sampleFamily = []string{
	"0 HEAD",
	"0 @I1@ INDI",
	"1 NAME John /Smith/",
	"1 SEX M",
	"1 BIRT",
	"2 DATE 1 JAN 1910",
	"2 PLAC New York, New York",
	"0 @I2@ INDI",
	"1 NAME Mary /Johnson/",
	"1 SEX F",
	"1 BIRT",
	"2 DATE 3 MAR 1912",
	"2 PLAC Boston, Massachusetts",
	"0 @I3@ INDI",
	"1 NAME James /Smith/",
	"1 SEX M",
	"1 BIRT",
	"2 DATE 10 JUL 1936",
	"0 @F1@ FAM",
	"1 HUSB @I1@",
	"1 WIFE @I2@",
	"1 CHIL @I3@",
	"1 MARR",
	"2 DATE 5 JUN 1935",
	"2 PLAC Boston, Massachusetts",
	"0 TRLR",
}

func TestRun_CreatesFamily(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t, sampleFamily...)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})

	assert.Equal(t, Stats{
		IndividualsCreated:   3,
		NamesCreated:         3,
		NamesLinked:          3,
		EventsCreated:        4,
		RelationshipsCreated: 2,
	}, report.Stats)
	assert.False(t, report.Pretend)

	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	require.Len(t, persons, 3)

	john := personByFirstName(t, persons, "John")
	mary := personByFirstName(t, persons, "Mary")
	james := personByFirstName(t, persons, "James")

	assert.Equal(t, models.GenderMale, john.Gender)
	assert.Equal(t, models.GenderFemale, mary.Gender)
	assert.True(t, john.IsLiving)

	require.NotNil(t, john.Birth)
	assert.Equal(t, utcDate(1910, time.January, 1), john.Birth.Date)
	assert.Equal(t, "New York, New York", john.Birth.Location)

	marriageDate := utcDate(1935, time.June, 5)
	forward, err := st.FindCoupleEvent(ctx, treeID, models.CoupleMarriage, john.ID, mary.ID, marriageDate)
	require.NoError(t, err)
	require.NotNil(t, forward)
	mirror, err := st.FindCoupleEvent(ctx, treeID, models.CoupleMarriage, mary.ID, john.ID, marriageDate)
	require.NoError(t, err)
	require.NotNil(t, mirror)
	assert.Equal(t, forward.Location, mirror.Location)
	assert.Equal(t, "Boston, Massachusetts", forward.Location)
	assert.False(t, forward.Ended)

	for _, parent := range []*models.Person{john, mary} {
		linked, err := st.HasParentChildLink(ctx, treeID, parent.ID, james.ID)
		require.NoError(t, err)
		assert.True(t, linked)
	}
	reversed, err := st.HasParentChildLink(ctx, treeID, james.ID, john.ID)
	require.NoError(t, err)
	assert.False(t, reversed)
}

func TestRun_ReimportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t, sampleFamily...)
	imp := testImporter(st, nil)

	runImport(t, imp, path, Options{TreeID: treeID})
	second := runImport(t, imp, path, Options{TreeID: treeID})

	assert.Equal(t, Stats{IndividualsUpdated: 3}, second.Stats)

	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	assert.Len(t, persons, 3)
}

func TestRun_PretendMakesNoChanges(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t, sampleFamily...)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID, Pretend: true})

	assert.True(t, report.Pretend)
	assert.Equal(t, Stats{
		IndividualsCreated:   3,
		NamesCreated:         3,
		NamesLinked:          3,
		EventsCreated:        4,
		RelationshipsCreated: 2,
	}, report.Stats, "a pretend run reports exactly what a real run would do")

	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	assert.Empty(t, persons)
}

func TestRun_PoolAccumulatesWithinFile(t *testing.T) {
	fixture := []string{
		"0 @I1@ INDI",
		"1 NAME Bill /Harris/",
		"1 BIRT",
		"2 DATE 1970",
		"0 @I2@ INDI",
		"1 NAME William /Harris/",
		"1 BIRT",
		"2 DATE 1970",
		"0 TRLR",
	}

	for _, pretend := range []bool{false, true} {
		st := memory.New()
		treeID := uuid.New()
		path := writeFixture(t, fixture...)

		report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID, Pretend: pretend})

		assert.Equal(t, 1, report.Stats.IndividualsCreated, "pretend=%v", pretend)
		assert.Equal(t, 1, report.Stats.IndividualsUpdated,
			"pretend=%v: the second individual matches the one created moments earlier", pretend)

		persons, err := st.ListPersons(context.Background(), treeID)
		require.NoError(t, err)
		if pretend {
			assert.Empty(t, persons)
		} else {
			assert.Len(t, persons, 1)
		}
	}
}

func TestRun_DivorceClosesMarriage(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t,
		"0 @I1@ INDI",
		"1 NAME Frank /Miller/",
		"1 SEX M",
		"0 @I2@ INDI",
		"1 NAME Grace /Lee/",
		"1 SEX F",
		"0 @F1@ FAM",
		"1 HUSB @I1@",
		"1 WIFE @I2@",
		"1 MARR",
		"2 DATE 5 JUN 1935",
		"1 DIV",
		"2 DATE 12 OCT 1950",
		"0 TRLR",
	)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})
	assert.Equal(t, 2, report.Stats.EventsCreated)

	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	frank := personByFirstName(t, persons, "Frank")
	grace := personByFirstName(t, persons, "Grace")

	marriage, err := st.FindCoupleEvent(ctx, treeID, models.CoupleMarriage, frank.ID, grace.ID, utcDate(1935, time.June, 5))
	require.NoError(t, err)
	require.NotNil(t, marriage)
	assert.True(t, marriage.Ended, "the divorce closes the marriage")

	mirror, err := st.FindCoupleEvent(ctx, treeID, models.CoupleMarriage, grace.ID, frank.ID, utcDate(1935, time.June, 5))
	require.NoError(t, err)
	require.NotNil(t, mirror)
	assert.True(t, mirror.Ended)

	divorce, err := st.FindCoupleEvent(ctx, treeID, models.CoupleDivorce, frank.ID, grace.ID, utcDate(1950, time.October, 12))
	require.NoError(t, err)
	require.NotNil(t, divorce)
	assert.False(t, divorce.Ended)
}

func TestRun_CoupleEventFoundInEitherDirection(t *testing.T) {
	st := memory.New()
	treeID := uuid.New()
	imp := testImporter(st, nil)

	couple := func(husb, wife string) []string {
		return []string{
			"0 @I1@ INDI",
			"1 NAME John /Smith/",
			"1 BIRT",
			"2 DATE 1 JAN 1910",
			"0 @I2@ INDI",
			"1 NAME Mary /Johnson/",
			"1 BIRT",
			"2 DATE 3 MAR 1912",
			"0 @F1@ FAM",
			"1 HUSB " + husb,
			"1 WIFE " + wife,
			"1 MARR",
			"2 DATE 5 JUN 1935",
			"0 TRLR",
		}
	}

	first := runImport(t, imp, writeFixture(t, couple("@I1@", "@I2@")...), Options{TreeID: treeID})
	assert.Equal(t, 3, first.Stats.EventsCreated)

	swapped := runImport(t, imp, writeFixture(t, couple("@I2@", "@I1@")...), Options{TreeID: treeID})
	assert.Equal(t, 0, swapped.Stats.EventsCreated,
		"the symmetric pair is found regardless of spouse order")
}

func TestRun_DeathMarksDeceased(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t,
		"0 @I1@ INDI",
		"1 NAME Ada /Byrne/",
		"1 SEX F",
		"1 BIRT",
		"2 DATE 1 JAN 1900",
		"1 DEAT",
		"2 DATE 2 FEB 1980",
		"2 PLAC Dublin",
		"2 CAUS Influenza",
		"0 TRLR",
	)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})
	assert.Equal(t, 2, report.Stats.EventsCreated)

	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	ada := personByFirstName(t, persons, "Ada")
	assert.False(t, ada.IsLiving)

	death, err := st.FindLifeEvent(ctx, treeID, ada.ID, models.EventDeath)
	require.NoError(t, err)
	require.NotNil(t, death)
	assert.Equal(t, "Dublin", death.Location)
	assert.Equal(t, "Influenza", death.Cause)
}

func TestRun_MigrationEventFieldMapping(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t,
		"0 @I1@ INDI",
		"1 NAME Elena /Petrov/",
		"1 SEX F",
		"1 BIRT",
		"2 DATE ABT 1900",
		"1 EMIG",
		"2 DATE 3 MAY 1919",
		"2 PLAC Russia",
		"2 PLAC_TO United States",
		"1 IMMI",
		"2 DATE 12 APR 1921",
		"2 PLAC United States",
		"2 PLAC_FROM Russia",
		"1 NATU",
		"2 DATE 9 SEP 1927",
		"2 PLAC New York",
		"0 TRLR",
	)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})
	assert.Equal(t, 3, report.Stats.EventsCreated, "the unparseable birth date produces no event")

	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	elena := personByFirstName(t, persons, "Elena")
	assert.Nil(t, elena.Birth)

	immigration, err := st.FindLifeEventOnDate(ctx, treeID, elena.ID, models.EventImmigration, utcDate(1921, time.April, 12))
	require.NoError(t, err)
	require.NotNil(t, immigration)
	assert.Equal(t, "Russia", immigration.FromCountry)
	assert.Equal(t, "United States", immigration.ToCountry)
	assert.Equal(t, "United States", immigration.Location)

	emigration, err := st.FindLifeEventOnDate(ctx, treeID, elena.ID, models.EventImmigration, utcDate(1919, time.May, 3))
	require.NoError(t, err)
	require.NotNil(t, emigration)
	assert.Equal(t, "Russia", emigration.FromCountry)
	assert.Equal(t, "United States", emigration.ToCountry)
	assert.Equal(t, "Russia", emigration.Location)

	citizenship, err := st.FindLifeEventOnDate(ctx, treeID, elena.ID, models.EventCitizenship, utcDate(1927, time.September, 9))
	require.NoError(t, err)
	require.NotNil(t, citizenship)
	assert.Equal(t, "New York", citizenship.Country)
	assert.Equal(t, "New York", citizenship.Location)
}

func TestRun_GenderMapping(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t,
		"0 @I1@ INDI",
		"1 NAME Alan /Poe/",
		"1 SEX M",
		"0 @I2@ INDI",
		"1 NAME Beth /Poe/",
		"1 SEX F",
		"0 @I3@ INDI",
		"1 NAME Casey /Poe/",
		"1 SEX X",
		"0 @I4@ INDI",
		"1 NAME Drew /Poe/",
		"0 TRLR",
	)

	runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})

	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	require.Len(t, persons, 4)

	assert.Equal(t, models.GenderMale, personByFirstName(t, persons, "Alan").Gender)
	assert.Equal(t, models.GenderFemale, personByFirstName(t, persons, "Beth").Gender)
	assert.Equal(t, models.GenderUnknown, personByFirstName(t, persons, "Casey").Gender)
	assert.Equal(t, models.GenderUnknown, personByFirstName(t, persons, "Drew").Gender)
}

func TestRun_SexOnUpdate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	imp := testImporter(st, nil)

	person := func(sexLine ...string) []string {
		lines := []string{
			"0 @I1@ INDI",
			"1 NAME John /Smith/",
		}
		lines = append(lines, sexLine...)
		lines = append(lines, "1 BIRT", "2 DATE 1910", "0 TRLR")
		return lines
	}

	runImport(t, imp, writeFixture(t, person("1 SEX M")...), Options{TreeID: treeID})

	runImport(t, imp, writeFixture(t, person()...), Options{TreeID: treeID})
	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	assert.Equal(t, models.GenderMale, persons[0].Gender, "absent SEX leaves the stored gender alone")

	runImport(t, imp, writeFixture(t, person("1 SEX F")...), Options{TreeID: treeID})
	persons, err = st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	assert.Equal(t, models.GenderFemale, persons[0].Gender, "explicit SEX overrides the stored gender")
}

func TestRun_StrictMatching(t *testing.T) {
	peter := []string{
		"0 @I1@ INDI",
		"1 NAME Peter /Gibson/",
		"1 BIRT",
		"2 DATE 1980",
		"0 TRLR",
	}
	pete := []string{
		"0 @I1@ INDI",
		"1 NAME Pete /Gibson/",
		"1 BIRT",
		"2 DATE 1980",
		"0 TRLR",
	}

	t.Run("lenient accepts the nickname", func(t *testing.T) {
		st := memory.New()
		treeID := uuid.New()
		imp := testImporter(st, nil)

		runImport(t, imp, writeFixture(t, peter...), Options{TreeID: treeID})
		second := runImport(t, imp, writeFixture(t, pete...), Options{TreeID: treeID})

		assert.Equal(t, 0, second.Stats.IndividualsCreated)
		assert.Equal(t, 1, second.Stats.IndividualsUpdated)
		assert.Equal(t, 1, second.Stats.NamesCreated, "the nickname is recorded as an additional name")
		assert.Equal(t, 1, second.Stats.NamesLinked)

		persons, err := st.ListPersons(context.Background(), treeID)
		require.NoError(t, err)
		require.Len(t, persons, 1)
		assert.Len(t, persons[0].Names, 2)
	})

	t.Run("strict creates a second person", func(t *testing.T) {
		st := memory.New()
		treeID := uuid.New()
		imp := testImporter(st, nil)

		runImport(t, imp, writeFixture(t, peter...), Options{TreeID: treeID, Strict: true})
		second := runImport(t, imp, writeFixture(t, pete...), Options{TreeID: treeID, Strict: true})

		assert.Equal(t, 1, second.Stats.IndividualsCreated)
		assert.Equal(t, 0, second.Stats.IndividualsUpdated)

		persons, err := st.ListPersons(context.Background(), treeID)
		require.NoError(t, err)
		assert.Len(t, persons, 2)
	})
}

func TestRun_SharedNameValueLinkedTwice(t *testing.T) {
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t,
		"0 @I1@ INDI",
		"1 NAME John /Smith/",
		"1 BIRT",
		"2 DATE 1910",
		"0 @I2@ INDI",
		"1 NAME John /Smith/",
		"1 BIRT",
		"2 DATE 1950",
		"0 TRLR",
	)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})

	assert.Equal(t, 2, report.Stats.IndividualsCreated,
		"forty years apart is two different people")
	assert.Equal(t, 1, report.Stats.NamesCreated, "one name row serves both")
	assert.Equal(t, 2, report.Stats.NamesLinked)
}

func TestRun_NamelessIndividualSkipped(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t,
		"0 @I1@ INDI",
		"1 SEX M",
		"0 @I2@ INDI",
		"1 NAME Mary /Johnson/",
		"0 @F1@ FAM",
		"1 HUSB @I1@",
		"1 WIFE @I2@",
		"1 MARR",
		"2 DATE 5 JUN 1935",
		"0 TRLR",
	)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})

	assert.Equal(t, 1, report.Stats.IndividualsCreated)
	assert.Equal(t, 0, report.Stats.EventsCreated, "no marriage without both spouses resolved")
	assert.Empty(t, report.Stats.Errors, "a nameless individual is skipped, not an error")

	persons, err := st.ListPersons(ctx, treeID)
	require.NoError(t, err)
	assert.Len(t, persons, 1)
}

// flakyNameStore fails name inserts for one specific first name.
type flakyNameStore struct {
	store.Store
	failFirst string
}

func (s *flakyNameStore) CreateName(ctx context.Context, treeID uuid.UUID, req models.CreateNameRequest) (*models.Name, error) {
	if req.First == s.failFirst {
		return nil, errors.New("name insert failed")
	}
	return s.Store.CreateName(ctx, treeID, req)
}

func TestRun_IndividualErrorDoesNotAbortRun(t *testing.T) {
	st := &flakyNameStore{Store: memory.New(), failFirst: "Bad"}
	treeID := uuid.New()
	path := writeFixture(t,
		"0 @I1@ INDI",
		"1 NAME Bad /Actor/",
		"0 @I2@ INDI",
		"1 NAME Good /Person/",
		"0 @F1@ FAM",
		"1 HUSB @I1@",
		"1 WIFE @I2@",
		"1 MARR",
		"2 DATE 5 JUN 1935",
		"0 TRLR",
	)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})

	require.Len(t, report.Stats.Errors, 1)
	assert.Equal(t, "Error importing individual @I1@: name insert failed", report.Stats.Errors[0])
	assert.Equal(t, 0, report.Stats.EventsCreated,
		"the failed individual stays unresolved, so the marriage is skipped")

	persons, err := st.ListPersons(context.Background(), treeID)
	require.NoError(t, err)
	assert.Len(t, persons, 2, "the person row written before the failure remains")
}

// flakyLinkStore fails every parent-child link insert.
type flakyLinkStore struct {
	store.Store
}

func (s *flakyLinkStore) CreateParentChildLink(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*models.ParentChildLink, error) {
	return nil, errors.New("link insert failed")
}

func TestRun_FamilyErrorIsRecorded(t *testing.T) {
	st := &flakyLinkStore{Store: memory.New()}
	treeID := uuid.New()
	path := writeFixture(t, sampleFamily...)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})

	require.Len(t, report.Stats.Errors, 1)
	assert.Equal(t, "Error importing family @F1@: link insert failed", report.Stats.Errors[0])
	assert.Equal(t, 4, report.Stats.EventsCreated, "events written before the failure are kept")
	assert.Equal(t, 0, report.Stats.RelationshipsCreated)
}

func TestRun_UnknownFamilyMemberWarnsAndContinues(t *testing.T) {
	st := memory.New()
	treeID := uuid.New()
	path := writeFixture(t,
		"0 @I1@ INDI",
		"1 NAME John /Smith/",
		"0 @I2@ INDI",
		"1 NAME Mary /Johnson/",
		"0 @F1@ FAM",
		"1 HUSB @I1@",
		"1 WIFE @I2@",
		"1 CHIL @I9@",
		"1 MARR",
		"2 DATE 5 JUN 1935",
		"0 TRLR",
	)

	report := runImport(t, testImporter(st, nil), path, Options{TreeID: treeID})

	assert.Empty(t, report.Stats.Errors)
	assert.Equal(t, 1, report.Stats.EventsCreated)
	assert.Equal(t, 0, report.Stats.RelationshipsCreated)
}

func TestRun_MissingFileFails(t *testing.T) {
	imp := testImporter(memory.New(), nil)

	report, err := imp.Run(context.Background(), filepath.Join(t.TempDir(), "missing.ged"), Options{TreeID: uuid.New()})
	require.Error(t, err)
	assert.Nil(t, report)
}

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	created   []*models.Person
	updated   []*models.Person
	completed []events.ImportSummary
}

func (e *recordingEmitter) EmitPersonCreated(_ context.Context, _ uuid.UUID, person *models.Person) error {
	e.created = append(e.created, person)
	return nil
}

func (e *recordingEmitter) EmitPersonUpdated(_ context.Context, _ uuid.UUID, person *models.Person) error {
	e.updated = append(e.updated, person)
	return nil
}

func (e *recordingEmitter) EmitImportCompleted(_ context.Context, _ uuid.UUID, summary events.ImportSummary) error {
	e.completed = append(e.completed, summary)
	return nil
}

func TestRun_EmitsLifecycleEvents(t *testing.T) {
	st := memory.New()
	treeID := uuid.New()
	emitter := &recordingEmitter{}
	imp := testImporter(st, emitter)
	path := writeFixture(t, sampleFamily...)

	runImport(t, imp, path, Options{TreeID: treeID})

	assert.Len(t, emitter.created, 3)
	assert.Empty(t, emitter.updated)
	require.Len(t, emitter.completed, 1)
	assert.Equal(t, events.ImportSummary{
		IndividualsCreated:   3,
		EventsCreated:        4,
		RelationshipsCreated: 2,
	}, emitter.completed[0])

	runImport(t, imp, path, Options{TreeID: treeID})
	assert.Len(t, emitter.created, 3)
	assert.Len(t, emitter.updated, 3)
	assert.Len(t, emitter.completed, 2)
}

func TestRun_PretendEmitsNothing(t *testing.T) {
	emitter := &recordingEmitter{}
	imp := testImporter(memory.New(), emitter)
	path := writeFixture(t, sampleFamily...)

	runImport(t, imp, path, Options{TreeID: uuid.New(), Pretend: true})

	assert.Empty(t, emitter.created)
	assert.Empty(t, emitter.updated)
	assert.Empty(t, emitter.completed)
}
