// Package importer drives a GEDCOM import run end to end: parse the file,
// match each individual against the persons already in the tree, and persist
// people, names, events and relationships through the store. A pretend run
// walks the same pipeline with every write skipped, so its report shows
// exactly what a real run would do.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/jwoglom/djtree/pkg/appcontext"
	"github.com/jwoglom/djtree/pkg/events"
	"github.com/jwoglom/djtree/pkg/gedcom"
	"github.com/jwoglom/djtree/pkg/graph"
	"github.com/jwoglom/djtree/pkg/matching"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/normalizers"
	"github.com/jwoglom/djtree/pkg/store"
	"github.com/jwoglom/djtree/pkg/tracing"
)

// Options configure one import run.
type Options struct {
	// TreeID scopes every read and write of the run.
	TreeID uuid.UUID
	// Pretend skips every persistence call while still running all finds,
	// so the report shows what a real run would have done.
	Pretend bool
	// Strict requires exact first names and matching birth years when
	// matching individuals against existing persons.
	Strict bool
}

// Importer imports GEDCOM files into a family tree.
type Importer struct {
	logger  ectologger.Logger
	store   store.Store
	matcher *matching.Service
	parser  *gedcom.Parser
	emitter events.Emitter
	family  *graph.FamilyService
}

// New creates an importer. emitter and family are optional; pass nil to
// disable lifecycle events or graph projection.
func New(
	logger ectologger.Logger,
	st store.Store,
	matcher *matching.Service,
	emitter events.Emitter,
	family *graph.FamilyService,
) *Importer {
	return &Importer{
		logger:  logger,
		store:   st,
		matcher: matcher,
		parser:  gedcom.NewParser(logger),
		emitter: emitter,
		family:  family,
	}
}

// runState carries the bookkeeping shared by the two import passes.
type runState struct {
	opts   Options
	report *Report

	// pool is the accumulating match pool: every person already in the tree
	// plus every person this run produced, pretend ones included, so later
	// individuals in the file can match earlier ones.
	pool []*models.Person
	// persons maps GEDCOM xrefs to the person each individual resolved to.
	persons map[string]*models.Person
}

func (r *runState) addToPool(person *models.Person) {
	for _, p := range r.pool {
		if p.ID == person.ID {
			return
		}
	}
	r.pool = append(r.pool, person)
}

// Run imports the GEDCOM file at path. Only an unreadable input or a failed
// initial listing fails the run; per-record errors land in the report and
// processing continues with the next record.
func (i *Importer) Run(ctx context.Context, path string, opts Options) (*Report, error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.Run")
	defer span.End()

	ctx = appcontext.SetRunID(ctx, uuid.New().String())
	ctx = appcontext.SetTreeID(ctx, opts.TreeID.String())
	ctx = appcontext.SetSource(ctx, filepath.Base(path))

	log := i.logger.WithContext(ctx).WithFields(map[string]any{
		"file":    path,
		"tree_id": opts.TreeID,
		"pretend": opts.Pretend,
		"strict":  opts.Strict,
	})

	log.Infof("Parsing GEDCOM file: %s", path)
	parsed, err := i.parser.ParseFile(ctx, path)
	if err != nil {
		log.WithError(err).Error("Failed to parse GEDCOM file")
		return nil, err
	}

	log.Infof("Found %d individuals and %d families", len(parsed.Individuals), len(parsed.Families))
	if opts.Pretend {
		log.Info("PRETEND MODE: No changes will be made to the database")
	}

	pool, err := i.store.ListPersons(ctx, opts.TreeID)
	if err != nil {
		log.WithError(err).Error("Failed to list existing persons")
		return nil, err
	}

	run := &runState{
		opts:    opts,
		report:  &Report{Pretend: opts.Pretend},
		pool:    pool,
		persons: make(map[string]*models.Person),
	}

	for _, rec := range parsed.Individuals {
		person, created, err := i.importIndividual(ctx, rec, run, log)
		if err != nil {
			msg := fmt.Sprintf("Error importing individual %s: %v", rec.Xref, err)
			run.report.Stats.Errors = append(run.report.Stats.Errors, msg)
			log.WithError(err).Errorf("Error importing individual %s", rec.Xref)
			continue
		}
		if person == nil {
			// No usable name; family references to this xref warn downstream
			continue
		}

		run.persons[rec.Xref] = person
		run.addToPool(person)
		i.notifyPerson(ctx, person, created, run, log)
	}

	for _, rec := range parsed.Families {
		if err := i.importFamily(ctx, rec, run, log); err != nil {
			msg := fmt.Sprintf("Error importing family %s: %v", rec.Xref, err)
			run.report.Stats.Errors = append(run.report.Stats.Errors, msg)
			log.WithError(err).Errorf("Error importing family %s", rec.Xref)
		}
	}

	i.notifyCompleted(ctx, run, log)

	log.WithFields(map[string]any{
		"individuals_created":   run.report.Stats.IndividualsCreated,
		"individuals_updated":   run.report.Stats.IndividualsUpdated,
		"names_created":         run.report.Stats.NamesCreated,
		"names_linked":          run.report.Stats.NamesLinked,
		"events_created":        run.report.Stats.EventsCreated,
		"relationships_created": run.report.Stats.RelationshipsCreated,
		"errors":                len(run.report.Stats.Errors),
	}).Info("Import run complete")

	return run.report, nil
}

// importIndividual resolves one INDI record to a person, creating one when
// no existing person matches. A record with neither a first nor a last name
// resolves to nothing.
func (i *Importer) importIndividual(ctx context.Context, rec *gedcom.Record, run *runState, log ectologger.Logger) (*models.Person, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.importIndividual")
	defer span.End()

	first, middle, last := normalizers.ParseName(rec.Field("NAME"))
	if first == "" && last == "" {
		log.Warnf("Warning: Individual %s has no valid name", rec.Xref)
		return nil, false, nil
	}

	person := i.matcher.FindMatch(ctx, rec, run.pool, run.opts.Strict)
	created := person == nil

	if created {
		gender, _ := models.GenderFromSex(rec.Field("SEX"))
		if !run.opts.Pretend {
			p, err := i.store.CreatePerson(ctx, run.opts.TreeID, models.CreatePersonRequest{
				Gender:   gender,
				IsLiving: true,
			})
			if err != nil {
				return nil, false, err
			}
			person = p
		} else {
			now := time.Now().UTC()
			person = &models.Person{
				ID:        uuid.New(),
				TreeID:    run.opts.TreeID,
				Gender:    gender,
				IsLiving:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}
		run.report.Stats.IndividualsCreated++
		log.Debugf("Creating new person: %s %s", first, last)
	} else {
		run.report.Stats.IndividualsUpdated++
		log.Debugf("Found existing person: %s", person)

		// Only an explicit SEX value overrides the stored gender
		if gender, explicit := models.GenderFromSex(rec.Field("SEX")); explicit {
			if !run.opts.Pretend {
				if err := i.store.UpdatePersonGender(ctx, run.opts.TreeID, person.ID, gender); err != nil {
					return nil, false, err
				}
			}
			person.Gender = gender
		}
	}

	if err := i.importName(ctx, person, first, middle, last, run); err != nil {
		return nil, false, err
	}
	if err := i.importLifeEvents(ctx, person, rec, run); err != nil {
		return nil, false, err
	}

	return person, created, nil
}

// importName finds or creates the name value and its link to the person, and
// keeps the person's in-memory name list current for later matching.
func (i *Importer) importName(ctx context.Context, person *models.Person, first, middle, last string, run *runState) error {
	name, err := i.store.FindName(ctx, run.opts.TreeID, first, middle, last)
	if err != nil {
		return err
	}
	if name == nil {
		if !run.opts.Pretend {
			name, err = i.store.CreateName(ctx, run.opts.TreeID, models.CreateNameRequest{
				First:  first,
				Middle: middle,
				Last:   last,
			})
			if err != nil {
				return err
			}
		} else {
			name = &models.Name{
				ID:        uuid.New(),
				TreeID:    run.opts.TreeID,
				First:     first,
				Middle:    middle,
				Last:      last,
				CreatedAt: time.Now().UTC(),
			}
		}
		run.report.Stats.NamesCreated++
	}

	link, err := i.store.FindPersonName(ctx, run.opts.TreeID, person.ID, name.ID)
	if err != nil {
		return err
	}
	if link == nil {
		if !run.opts.Pretend {
			// The type of an existing link is never rewritten
			if _, err := i.store.LinkPersonName(ctx, run.opts.TreeID, person.ID, name.ID, models.NameTypeOther); err != nil {
				return err
			}
		}
		run.report.Stats.NamesLinked++
	}

	for _, existing := range person.Names {
		if existing.ID == name.ID {
			return nil
		}
	}
	person.Names = append(person.Names, name)
	return nil
}

// importLifeEvents materializes the record's dated events. An event tag
// without a parseable DATE is skipped without error.
func (i *Importer) importLifeEvents(ctx context.Context, person *models.Person, rec *gedcom.Record, run *runState) error {
	if birt := rec.Sub("BIRT"); birt != nil {
		if date := normalizers.ParseDate(birt["DATE"]); date != nil {
			if err := i.ensureLifeEvent(ctx, person, run, models.CreateLifeEventRequest{
				PersonID: person.ID,
				Kind:     models.EventBirth,
				Date:     *date,
				Location: birt["PLAC"],
			}); err != nil {
				return err
			}
		}
	}

	if deat := rec.Sub("DEAT"); deat != nil {
		if date := normalizers.ParseDate(deat["DATE"]); date != nil {
			if err := i.ensureLifeEvent(ctx, person, run, models.CreateLifeEventRequest{
				PersonID: person.ID,
				Kind:     models.EventDeath,
				Date:     *date,
				Location: deat["PLAC"],
				Cause:    deat["CAUS"],
			}); err != nil {
				return err
			}
			if !run.opts.Pretend {
				if err := i.store.MarkDeceased(ctx, run.opts.TreeID, person.ID); err != nil {
					return err
				}
			}
			person.IsLiving = false
		}
	}

	if immi := rec.Sub("IMMI"); immi != nil {
		if date := normalizers.ParseDate(immi["DATE"]); date != nil {
			// For IMMI the PLAC is the destination and PLAC_FROM the origin
			if err := i.ensureLifeEvent(ctx, person, run, models.CreateLifeEventRequest{
				PersonID:    person.ID,
				Kind:        models.EventImmigration,
				Date:        *date,
				Location:    immi["PLAC"],
				FromCountry: immi["PLAC_FROM"],
				ToCountry:   immi["PLAC"],
			}); err != nil {
				return err
			}
		}
	}

	if emig := rec.Sub("EMIG"); emig != nil {
		if date := normalizers.ParseDate(emig["DATE"]); date != nil {
			// For EMIG the PLAC is the origin and PLAC_TO the destination
			if err := i.ensureLifeEvent(ctx, person, run, models.CreateLifeEventRequest{
				PersonID:    person.ID,
				Kind:        models.EventImmigration,
				Date:        *date,
				Location:    emig["PLAC"],
				FromCountry: emig["PLAC"],
				ToCountry:   emig["PLAC_TO"],
			}); err != nil {
				return err
			}
		}
	}

	if natu := rec.Sub("NATU"); natu != nil {
		if date := normalizers.ParseDate(natu["DATE"]); date != nil {
			if err := i.ensureLifeEvent(ctx, person, run, models.CreateLifeEventRequest{
				PersonID: person.ID,
				Kind:     models.EventCitizenship,
				Date:     *date,
				Location: natu["PLAC"],
				Country:  natu["PLAC"],
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

// ensureLifeEvent finds or creates one event. Birth and death are unique per
// person; immigration and citizenship are unique per (person, kind, date).
func (i *Importer) ensureLifeEvent(ctx context.Context, person *models.Person, run *runState, req models.CreateLifeEventRequest) error {
	var existing *models.LifeEvent
	var err error
	switch req.Kind {
	case models.EventBirth, models.EventDeath:
		existing, err = i.store.FindLifeEvent(ctx, run.opts.TreeID, person.ID, req.Kind)
	default:
		existing, err = i.store.FindLifeEventOnDate(ctx, run.opts.TreeID, person.ID, req.Kind, req.Date)
	}
	if err != nil {
		return err
	}

	if existing == nil {
		if !run.opts.Pretend {
			existing, err = i.store.CreateLifeEvent(ctx, run.opts.TreeID, req)
			if err != nil {
				return err
			}
		} else {
			existing = &models.LifeEvent{
				ID:          uuid.New(),
				TreeID:      run.opts.TreeID,
				PersonID:    req.PersonID,
				Kind:        req.Kind,
				Date:        req.Date,
				Location:    req.Location,
				Cause:       req.Cause,
				FromCountry: req.FromCountry,
				ToCountry:   req.ToCountry,
				Country:     req.Country,
				CreatedAt:   time.Now().UTC(),
			}
		}
		run.report.Stats.EventsCreated++
	}

	if req.Kind == models.EventBirth && person.Birth == nil {
		person.Birth = existing
	}
	return nil
}

// importFamily materializes one FAM record: marriage and divorce events when
// both spouses resolved, and a parent-child link from each resolved parent
// to each resolved child.
func (i *Importer) importFamily(ctx context.Context, rec *gedcom.Record, run *runState, log ectologger.Logger) error {
	ctx, span := tracing.StartSpan(ctx, "importer.Importer.importFamily")
	defer span.End()

	husband := i.resolveMember(rec, "HUSB", run, log)
	wife := i.resolveMember(rec, "WIFE", run, log)

	if husband != nil && wife != nil {
		if err := i.importCoupleEvent(ctx, husband, wife, rec.Sub("MARR"), models.CoupleMarriage, run, log); err != nil {
			return err
		}
		if err := i.importCoupleEvent(ctx, husband, wife, rec.Sub("DIV"), models.CoupleDivorce, run, log); err != nil {
			return err
		}
	}

	for _, childXref := range rec.List("CHIL") {
		if childXref == "" {
			continue
		}
		child := run.persons[childXref]
		if child == nil {
			log.Warnf("Family %s references unknown individual %s", rec.Xref, childXref)
			continue
		}
		for _, parent := range []*models.Person{husband, wife} {
			if parent == nil {
				continue
			}
			if err := i.ensureParentChildLink(ctx, parent, child, run, log); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveMember resolves a family member xref to the person the individuals
// pass produced. A reference to an xref outside that set, including one
// skipped for having no name, resolves to nil with a warning.
func (i *Importer) resolveMember(rec *gedcom.Record, tag string, run *runState, log ectologger.Logger) *models.Person {
	xref := rec.First(tag)
	if xref == "" {
		return nil
	}
	person := run.persons[xref]
	if person == nil {
		log.Warnf("Family %s references unknown individual %s", rec.Xref, xref)
	}
	return person
}

// importCoupleEvent finds or creates the symmetric event pair for one MARR
// or DIV sub-record, with either direction counting as existing. A divorce
// additionally closes every open marriage between the pair.
func (i *Importer) importCoupleEvent(ctx context.Context, personA, personB *models.Person, sub map[string]string, kind models.CoupleEventKind, run *runState, log ectologger.Logger) error {
	if sub == nil {
		return nil
	}
	date := normalizers.ParseDate(sub["DATE"])
	if date == nil {
		return nil
	}

	existing, err := i.store.FindCoupleEvent(ctx, run.opts.TreeID, kind, personA.ID, personB.ID, *date)
	if err != nil {
		return err
	}
	if existing == nil {
		existing, err = i.store.FindCoupleEvent(ctx, run.opts.TreeID, kind, personB.ID, personA.ID, *date)
		if err != nil {
			return err
		}
	}

	if existing == nil {
		if !run.opts.Pretend {
			pair, err := i.store.CreateCoupleEventPair(ctx, run.opts.TreeID, models.CreateCoupleEventRequest{
				Kind:          kind,
				PersonID:      personA.ID,
				OtherPersonID: personB.ID,
				Date:          *date,
				Location:      sub["PLAC"],
			})
			if err != nil {
				return err
			}
			i.projectCouple(ctx, pair.Forward, log)
		}
		run.report.Stats.EventsCreated++
	}

	if kind == models.CoupleDivorce && !run.opts.Pretend {
		closed, err := i.store.CloseOpenMarriages(ctx, run.opts.TreeID, personA.ID, personB.ID)
		if err != nil {
			return err
		}
		if closed > 0 {
			log.WithFields(map[string]any{
				"person_id":       personA.ID,
				"other_person_id": personB.ID,
				"rows":            closed,
			}).Debug("Closed open marriages after divorce")
		}
	}

	return nil
}

// ensureParentChildLink finds or creates one directed parent-child link.
func (i *Importer) ensureParentChildLink(ctx context.Context, parent, child *models.Person, run *runState, log ectologger.Logger) error {
	exists, err := i.store.HasParentChildLink(ctx, run.opts.TreeID, parent.ID, child.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if !run.opts.Pretend {
		link, err := i.store.CreateParentChildLink(ctx, run.opts.TreeID, parent.ID, child.ID)
		if err != nil {
			return err
		}
		if i.family != nil {
			if err := i.family.ProjectParentChild(ctx, link); err != nil {
				log.WithError(err).Warn("Failed to project parent-child link into graph")
			}
		}
	}
	run.report.Stats.RelationshipsCreated++
	return nil
}

// notifyPerson emits the person lifecycle event and projects the node into
// the graph. Both are best-effort and skipped entirely on pretend runs.
func (i *Importer) notifyPerson(ctx context.Context, person *models.Person, created bool, run *runState, log ectologger.Logger) {
	if run.opts.Pretend {
		return
	}

	if i.emitter != nil {
		var err error
		if created {
			err = i.emitter.EmitPersonCreated(ctx, run.opts.TreeID, person)
		} else {
			err = i.emitter.EmitPersonUpdated(ctx, run.opts.TreeID, person)
		}
		if err != nil {
			log.WithError(err).WithFields(map[string]any{
				"person_id": person.ID,
			}).Warn("Failed to emit person event")
		}
	}

	if i.family != nil {
		if err := i.family.ProjectPerson(ctx, person); err != nil {
			log.WithError(err).WithFields(map[string]any{
				"person_id": person.ID,
			}).Warn("Failed to project person into graph")
		}
	}
}

func (i *Importer) projectCouple(ctx context.Context, event *models.CoupleEvent, log ectologger.Logger) {
	if i.family == nil {
		return
	}
	if err := i.family.ProjectCouple(ctx, event); err != nil {
		log.WithError(err).WithFields(map[string]any{
			"couple_event_id": event.ID,
		}).Warn("Failed to project couple event into graph")
	}
}

// notifyCompleted emits the final import summary event.
func (i *Importer) notifyCompleted(ctx context.Context, run *runState, log ectologger.Logger) {
	if i.emitter == nil || run.opts.Pretend {
		return
	}
	summary := events.ImportSummary{
		IndividualsCreated:   run.report.Stats.IndividualsCreated,
		IndividualsUpdated:   run.report.Stats.IndividualsUpdated,
		EventsCreated:        run.report.Stats.EventsCreated,
		RelationshipsCreated: run.report.Stats.RelationshipsCreated,
		ErrorCount:           len(run.report.Stats.Errors),
	}
	if err := i.emitter.EmitImportCompleted(ctx, run.opts.TreeID, summary); err != nil {
		log.WithError(err).Warn("Failed to emit import completed event")
	}
}
