package wizard

import (
	"errors"
	"time"

	"github.com/jinzhu/now"
)

// AppointmentState is a step of the appointment wizard.
type AppointmentState int

const (
	StateDetails AppointmentState = iota + 1
	StateUploads
	StateConfirm
)

// AppointmentSteps is the number of steps in the appointment wizard.
const AppointmentSteps = int(StateConfirm)

func (s AppointmentState) String() string {
	switch s {
	case StateDetails:
		return "Details"
	case StateUploads:
		return "Uploads"
	case StateConfirm:
		return "Confirm"
	}
	return "Unknown"
}

var (
	ErrUnknownDocument     = errors.New("unknown document type")
	ErrNoDocumentsSelected = errors.New("select at least one document")
	ErrDocumentNotSelected = errors.New("document type is not selected")
	ErrEmptyUpload         = errors.New("uploaded file reference is empty")
	ErrUploadsIncomplete   = errors.New("every selected document must be uploaded")
	ErrDateUnavailable     = errors.New("date is not available")
	ErrSlotUnavailable     = errors.New("time slot is not available")
	ErrBookingIncomplete   = errors.New("pick a date and a time slot")
	ErrWrongState          = errors.New("action not allowed in the current step")
)

// DocumentType is an entry of the document checklist.
type DocumentType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var documentCatalogue = []DocumentType{
	{ID: "aadhaar", Label: "Aadhaar Card"},
	{ID: "pan", Label: "PAN Card"},
	{ID: "ssc", Label: "10th Marksheet"},
	{ID: "hsc", Label: "12th Marksheet"},
	{ID: "tc", Label: "Transfer Certificate"},
	{ID: "photo", Label: "Passport Photo"},
}

func DocumentCatalogue() []DocumentType {
	return append([]DocumentType(nil), documentCatalogue...)
}

func DocumentLabel(id string) (string, bool) {
	for _, d := range documentCatalogue {
		if d.ID == id {
			return d.Label, true
		}
	}
	return "", false
}

// FileRef is what the file store returns for an upload.
type FileRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type BookedDocument struct {
	DocumentType
	File FileRef
}

// Booking is the result of a completed appointment wizard.
type Booking struct {
	Date      time.Time
	Slot      string
	Documents []BookedDocument
}

// AppointmentWizard is the Details -> Uploads -> Confirm state machine.
type AppointmentWizard struct {
	calendar Calendar
	state    AppointmentState
	selected []string
	uploads  map[string]FileRef
	date     *time.Time
	slots    []string
	slot     string
}

func NewAppointmentWizard(cal Calendar) *AppointmentWizard {
	return &AppointmentWizard{
		calendar: cal,
		state:    StateDetails,
		uploads:  map[string]FileRef{},
	}
}

func (w *AppointmentWizard) State() AppointmentState { return w.state }

// SelectDocument ticks or unticks a checklist entry. Unticking drops its upload.
func (w *AppointmentWizard) SelectDocument(id string, checked bool) error {
	if w.state != StateDetails {
		return ErrWrongState
	}
	if _, ok := DocumentLabel(id); !ok {
		return ErrUnknownDocument
	}
	idx := w.indexOf(id)
	switch {
	case checked && idx < 0:
		w.selected = append(w.selected, id)
	case !checked && idx >= 0:
		w.selected = append(w.selected[:idx], w.selected[idx+1:]...)
		delete(w.uploads, id)
	}
	return nil
}

func (w *AppointmentWizard) SelectedDocuments() []string {
	return append([]string(nil), w.selected...)
}

func (w *AppointmentWizard) ToUploads() error {
	if w.state != StateDetails {
		return ErrWrongState
	}
	if len(w.selected) == 0 {
		return ErrNoDocumentsSelected
	}
	w.state = StateUploads
	return nil
}

func (w *AppointmentWizard) AttachUpload(id string, ref FileRef) error {
	if w.state != StateUploads {
		return ErrWrongState
	}
	if w.indexOf(id) < 0 {
		return ErrDocumentNotSelected
	}
	if ref.URL == "" {
		return ErrEmptyUpload
	}
	w.uploads[id] = ref
	return nil
}

// AllDocsUploaded reports whether every selected document has an uploaded file.
func (w *AppointmentWizard) AllDocsUploaded() bool {
	if len(w.selected) == 0 {
		return false
	}
	for _, id := range w.selected {
		if _, ok := w.uploads[id]; !ok {
			return false
		}
	}
	return true
}

func (w *AppointmentWizard) ToConfirm() error {
	if w.state != StateUploads {
		return ErrWrongState
	}
	if !w.AllDocsUploaded() {
		return ErrUploadsIncomplete
	}
	w.state = StateConfirm
	return nil
}

// Back returns to the previous step, keeping selections and uploads.
func (w *AppointmentWizard) Back() error {
	if w.state == StateDetails {
		return ErrFirstStep
	}
	w.state--
	return nil
}

// PickDate selects an appointment day. An unavailable day is rejected and clears
// the current date, slot list and slot.
func (w *AppointmentWizard) PickDate(d time.Time) error {
	if w.state != StateConfirm {
		return ErrWrongState
	}
	w.slot = ""
	slots, ok := w.calendar.Slots(d)
	if !ok {
		w.date = nil
		w.slots = nil
		return ErrDateUnavailable
	}
	day := now.With(d.In(w.calendar.loc)).BeginningOfDay()
	w.date = &day
	w.slots = slots
	return nil
}

func (w *AppointmentWizard) AvailableSlots() []string {
	return append([]string(nil), w.slots...)
}

func (w *AppointmentWizard) PickSlot(slot string) error {
	if w.state != StateConfirm || w.date == nil {
		return ErrWrongState
	}
	for _, s := range w.slots {
		if s == slot {
			w.slot = slot
			return nil
		}
	}
	return ErrSlotUnavailable
}

func (w *AppointmentWizard) CanFinalize() bool {
	return w.state == StateConfirm && w.date != nil && w.slot != "" && w.AllDocsUploaded()
}

// Booking returns the finalized booking with documents in selection order.
func (w *AppointmentWizard) Booking() (Booking, error) {
	if !w.CanFinalize() {
		return Booking{}, ErrBookingIncomplete
	}
	docs := make([]BookedDocument, 0, len(w.selected))
	for _, id := range w.selected {
		label, _ := DocumentLabel(id)
		docs = append(docs, BookedDocument{
			DocumentType: DocumentType{ID: id, Label: label},
			File:         w.uploads[id],
		})
	}
	return Booking{Date: *w.date, Slot: w.slot, Documents: docs}, nil
}

func (w *AppointmentWizard) indexOf(id string) int {
	for i, s := range w.selected {
		if s == id {
			return i
		}
	}
	return -1
}
