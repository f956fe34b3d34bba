// Package memory provides a Store backed by in-process slices. It backs the
// import pipeline in tests and in runs where no database is configured.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/store"
	"github.com/jwoglom/djtree/pkg/utils"
)

var _ store.Store = (*Store)(nil)
var _ store.AttachmentStore = (*Store)(nil)

// Store keeps every row as a value in an insertion-ordered slice. Reads
// return copies, so callers can decorate or mutate results without touching
// stored state.
type Store struct {
	mu sync.Mutex

	persons      []models.Person
	names        []models.Name
	personNames  []models.PersonName
	lifeEvents   []models.LifeEvent
	coupleEvents []models.CoupleEvent
	links        []models.ParentChildLink
	attachments  []models.Attachment
}

func New() *Store {
	return &Store{}
}

func (s *Store) ListPersons(_ context.Context, treeID uuid.UUID) ([]*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Person
	for _, p := range s.persons {
		if p.TreeID != treeID {
			continue
		}
		cp := p
		s.loadAssociations(&cp)
		out = append(out, &cp)
	}
	return out, nil
}

// loadAssociations fills Names and Birth on a copied person. Callers must
// hold s.mu.
func (s *Store) loadAssociations(p *models.Person) {
	for _, pn := range s.personNames {
		if pn.TreeID != p.TreeID || pn.PersonID != p.ID {
			continue
		}
		for _, n := range s.names {
			if n.ID == pn.NameID {
				cp := n
				p.Names = append(p.Names, &cp)
				break
			}
		}
	}
	for _, ev := range s.lifeEvents {
		if ev.TreeID == p.TreeID && ev.PersonID == p.ID && ev.Kind == models.EventBirth {
			cp := ev
			p.Birth = &cp
			break
		}
	}
}

func (s *Store) CreatePerson(_ context.Context, treeID uuid.UUID, req models.CreatePersonRequest) (*models.Person, error) {
	req, err := utils.Validate(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gender := req.Gender
	if gender == "" {
		gender = models.GenderUnknown
	}
	now := time.Now().UTC()
	p := models.Person{
		ID:        uuid.New(),
		TreeID:    treeID,
		Gender:    gender,
		IsLiving:  req.IsLiving,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.persons = append(s.persons, p)

	cp := p
	return &cp, nil
}

func (s *Store) UpdatePersonGender(_ context.Context, treeID, personID uuid.UUID, gender models.Gender) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.persons {
		if s.persons[i].TreeID == treeID && s.persons[i].ID == personID {
			s.persons[i].Gender = gender
			s.persons[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("person %s not found", personID)
}

func (s *Store) MarkDeceased(_ context.Context, treeID, personID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.persons {
		if s.persons[i].TreeID == treeID && s.persons[i].ID == personID {
			if s.persons[i].IsLiving {
				s.persons[i].IsLiving = false
				s.persons[i].UpdatedAt = time.Now().UTC()
			}
			return nil
		}
	}
	return fmt.Errorf("person %s not found", personID)
}

func (s *Store) FindName(_ context.Context, treeID uuid.UUID, first, middle, last string) (*models.Name, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.names {
		if n.TreeID == treeID && n.First == first && n.Middle == middle && n.Last == last {
			cp := n
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateName(_ context.Context, treeID uuid.UUID, req models.CreateNameRequest) (*models.Name, error) {
	req, err := utils.Validate(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := models.Name{
		ID:        uuid.New(),
		TreeID:    treeID,
		First:     req.First,
		Middle:    req.Middle,
		Last:      req.Last,
		CreatedAt: time.Now().UTC(),
	}
	s.names = append(s.names, n)

	cp := n
	return &cp, nil
}

func (s *Store) FindPersonName(_ context.Context, treeID, personID, nameID uuid.UUID) (*models.PersonName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pn := s.findPersonName(treeID, personID, nameID); pn != nil {
		cp := *pn
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) findPersonName(treeID, personID, nameID uuid.UUID) *models.PersonName {
	for i := range s.personNames {
		pn := &s.personNames[i]
		if pn.TreeID == treeID && pn.PersonID == personID && pn.NameID == nameID {
			return pn
		}
	}
	return nil
}

// LinkPersonName is idempotent: an existing link is returned unchanged, its
// type is never rewritten.
func (s *Store) LinkPersonName(_ context.Context, treeID, personID, nameID uuid.UUID, nameType models.NameType) (*models.PersonName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pn := s.findPersonName(treeID, personID, nameID); pn != nil {
		cp := *pn
		return &cp, nil
	}

	pn := models.PersonName{
		ID:        uuid.New(),
		TreeID:    treeID,
		PersonID:  personID,
		NameID:    nameID,
		Type:      nameType,
		CreatedAt: time.Now().UTC(),
	}
	s.personNames = append(s.personNames, pn)

	cp := pn
	return &cp, nil
}

func (s *Store) FindLifeEvent(_ context.Context, treeID, personID uuid.UUID, kind models.EventKind) (*models.LifeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.lifeEvents {
		if ev.TreeID == treeID && ev.PersonID == personID && ev.Kind == kind {
			cp := ev
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) FindLifeEventOnDate(_ context.Context, treeID, personID uuid.UUID, kind models.EventKind, date time.Time) (*models.LifeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.lifeEvents {
		if ev.TreeID == treeID && ev.PersonID == personID && ev.Kind == kind && ev.Date.Equal(date) {
			cp := ev
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateLifeEvent(_ context.Context, treeID uuid.UUID, req models.CreateLifeEventRequest) (*models.LifeEvent, error) {
	req, err := utils.Validate(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := models.LifeEvent{
		ID:          uuid.New(),
		TreeID:      treeID,
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
	s.lifeEvents = append(s.lifeEvents, ev)

	cp := ev
	return &cp, nil
}

func (s *Store) FindCoupleEvent(_ context.Context, treeID uuid.UUID, kind models.CoupleEventKind, personID, otherPersonID uuid.UUID, date time.Time) (*models.CoupleEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.coupleEvents {
		if ev.TreeID == treeID && ev.Kind == kind && ev.PersonID == personID &&
			ev.OtherPersonID == otherPersonID && ev.Date.Equal(date) {
			cp := ev
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateCoupleEventPair(_ context.Context, treeID uuid.UUID, req models.CreateCoupleEventRequest) (*models.CoupleEventPair, error) {
	req, err := utils.Validate(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	forward := models.CoupleEvent{
		ID:            uuid.New(),
		TreeID:        treeID,
		Kind:          req.Kind,
		PersonID:      req.PersonID,
		OtherPersonID: req.OtherPersonID,
		Date:          req.Date,
		Location:      req.Location,
		Comment:       req.Comment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	mirror := forward
	mirror.ID = uuid.New()
	mirror.PersonID = req.OtherPersonID
	mirror.OtherPersonID = req.PersonID

	s.coupleEvents = append(s.coupleEvents, forward, mirror)

	fcp, mcp := forward, mirror
	return &models.CoupleEventPair{Forward: &fcp, Mirror: &mcp}, nil
}

func (s *Store) CloseOpenMarriages(_ context.Context, treeID, personID, otherPersonID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.coupleEvents {
		ev := &s.coupleEvents[i]
		if ev.TreeID != treeID || ev.Kind != models.CoupleMarriage || ev.Ended {
			continue
		}
		between := (ev.PersonID == personID && ev.OtherPersonID == otherPersonID) ||
			(ev.PersonID == otherPersonID && ev.OtherPersonID == personID)
		if !between {
			continue
		}
		ev.Ended = true
		ev.UpdatedAt = time.Now().UTC()
		count++
	}
	return count, nil
}

func (s *Store) HasParentChildLink(_ context.Context, treeID, parentID, childID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findLink(treeID, parentID, childID) != nil, nil
}

func (s *Store) findLink(treeID, parentID, childID uuid.UUID) *models.ParentChildLink {
	for i := range s.links {
		l := &s.links[i]
		if l.TreeID == treeID && l.ParentID == parentID && l.ChildID == childID {
			return l
		}
	}
	return nil
}

// CreateParentChildLink rejects self-links and treats an existing link for
// the same ordered pair as a no-op.
func (s *Store) CreateParentChildLink(_ context.Context, treeID, parentID, childID uuid.UUID) (*models.ParentChildLink, error) {
	if parentID == childID {
		return nil, fmt.Errorf("person %s cannot be their own parent", parentID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l := s.findLink(treeID, parentID, childID); l != nil {
		cp := *l
		return &cp, nil
	}

	l := models.ParentChildLink{
		ID:        uuid.New(),
		TreeID:    treeID,
		ParentID:  parentID,
		ChildID:   childID,
		CreatedAt: time.Now().UTC(),
	}
	s.links = append(s.links, l)

	cp := l
	return &cp, nil
}

func (s *Store) ListAttachments(_ context.Context, treeID, personID uuid.UUID) ([]*models.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Attachment
	for _, a := range s.attachments {
		if a.TreeID == treeID && a.PersonID == personID {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) FindAttachment(_ context.Context, treeID, personID uuid.UUID, fileName string) (*models.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.attachments {
		if a.TreeID == treeID && a.PersonID == personID && a.FileName == fileName {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

// CreateAttachment refreshes file_type when the (person, file name) pair
// already exists; the stored row keeps its id and created_at.
func (s *Store) CreateAttachment(_ context.Context, treeID uuid.UUID, req models.CreateAttachmentRequest) (*models.Attachment, error) {
	req, err := utils.Validate(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.attachments {
		a := &s.attachments[i]
		if a.TreeID == treeID && a.PersonID == req.PersonID && a.FileName == req.FileName {
			a.FileType = req.FileType
			cp := *a
			return &cp, nil
		}
	}

	a := models.Attachment{
		ID:        uuid.New(),
		TreeID:    treeID,
		PersonID:  req.PersonID,
		FileName:  req.FileName,
		FileType:  req.FileType,
		CreatedAt: time.Now().UTC(),
	}
	s.attachments = append(s.attachments, a)

	cp := a
	return &cp, nil
}

func (s *Store) DeleteAttachment(_ context.Context, treeID, attachmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.attachments {
		if s.attachments[i].TreeID == treeID && s.attachments[i].ID == attachmentID {
			s.attachments = append(s.attachments[:i], s.attachments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("attachment %s not found", attachmentID)
}
