package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"time"

	"go.uber.org/zap"

	"nssc-portal/models"
	"nssc-portal/store"
	"nssc-portal/utils"
	"nssc-portal/validators"
	"nssc-portal/wizard"
)

var (
	ErrFinalizeIncomplete = errors.New("profile snapshot written but lock flag could not be set")
	ErrSnapshotFailed     = errors.New("profile snapshot could not be written")
	ErrIndexOutOfRange    = errors.New("entry index out of range")
	ErrUnknownAsset       = errors.New("unknown profile asset")

	errFinalizeRaced = errors.New("profile changed while finalizing")
)

const finalizeAttempts = 3

// ProfileBase is the resumable location of the profile wizard.
const ProfileBase = "/candidate/profile"

// StepResult reports where the wizard stands after a submit or retreat. On a
// rejected submit Values echoes the normalized input alongside FieldErrors.
type StepResult struct {
	Step        int                      `json:"step"`
	Location    string                   `json:"location"`
	Completion  float64                  `json:"profileCompletion"`
	Finalized   bool                     `json:"finalized"`
	Values      map[string]any           `json:"values,omitempty"`
	FieldErrors validators.FieldErrors   `json:"fieldErrors,omitempty"`
	Profile     *models.CandidateProfile `json:"profile,omitempty"`
}

type ProfileService struct {
	docs  store.DocumentStore
	snaps store.SnapshotStore
	files store.FileStore
	log   *zap.Logger
}

func NewProfileService(docs store.DocumentStore, snaps store.SnapshotStore, files store.FileStore, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{docs: docs, snaps: snaps, files: files, log: log}
}

// Load returns the candidate document, creating it with defaults on first visit.
func (s *ProfileService) Load(ctx context.Context, uid, email string) (models.CandidateProfile, store.Snapshot, error) {
	snap, err := s.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
		if current.Exists() {
			return nil, nil
		}
		return wizard.ToMap(models.NewCandidateProfile(uid, email))
	})
	if err != nil {
		return models.CandidateProfile{}, store.Snapshot{}, fmt.Errorf("load profile %s: %w", uid, err)
	}
	profile, err := decodeProfile(snap)
	return profile, snap, err
}

// Open positions a sequencer for a wizard visit. Without a step query value the
// visit resumes at the persisted step, and it never opens past that step.
func (s *ProfileService) Open(ctx context.Context, uid, email, resume string) (*wizard.Sequencer, models.CandidateProfile, error) {
	profile, _, err := s.Load(ctx, uid, email)
	if err != nil {
		return nil, models.CandidateProfile{}, err
	}
	if resume == "" && profile.CurrentStep > 0 {
		resume = strconv.Itoa(profile.CurrentStep)
	}
	if n, err := strconv.Atoi(resume); err == nil && n > profile.CurrentStep {
		resume = strconv.Itoa(max(profile.CurrentStep, 1))
	}
	seq, err := wizard.NewSequencer(wizard.ProfileSteps, resume, profile.ProfileLocked)
	if err != nil {
		return nil, profile, err
	}
	return seq, profile, nil
}

// SubmitStep validates one step and, when it passes, merges it into the profile
// and advances. Only the saved step or an earlier one can be submitted.
// Submitting the final step finalizes the profile instead.
func (s *ProfileService) SubmitStep(ctx context.Context, uid, email string, step int, body []byte) (StepResult, error) {
	profile, _, err := s.Load(ctx, uid, email)
	if err != nil {
		return StepResult{}, err
	}
	if profile.ProfileLocked {
		return StepResult{}, wizard.ErrProfileLocked
	}

	payload, err := wizard.DecodeStep(wizard.ProfileStep(step), body)
	if err != nil {
		return StepResult{}, err
	}
	if res, err := reachedStep(profile, step); err != nil {
		return res, err
	}
	if profile.FinalizeState == models.FinalizeStateFinalizing && step != wizard.ProfileSteps {
		return StepResult{}, wizard.ErrProfileLocked
	}

	payload = wizard.Normalize(payload)
	errs := wizard.ValidateStep(payload)

	seq, err := wizard.NewSequencer(wizard.ProfileSteps, strconv.Itoa(step), false)
	if err != nil {
		return StepResult{}, err
	}

	switch err := seq.Advance(errs); {
	case errors.Is(err, wizard.ErrValidationFailed):
		values, _ := wizard.ToMap(payload)
		return StepResult{
			Step:        step,
			Location:    seq.Location(ProfileBase),
			Completion:  profile.ProfileCompletion,
			Values:      values,
			FieldErrors: errs,
		}, err
	case errors.Is(err, wizard.ErrFinalStep):
		sealed, err := s.Finalize(ctx, uid)
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{
			Step:       step,
			Location:   "/candidate/dashboard",
			Completion: sealed.ProfileCompletion,
			Finalized:  true,
			Profile:    &sealed,
		}, nil
	case err != nil:
		return StepResult{}, err
	}

	patch, err := wizard.Patch(payload)
	if err != nil {
		return StepResult{}, err
	}
	patch["currentStep"] = seq.Current()

	snap, err := s.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
		if err := wizardWritable(current); err != nil {
			return nil, err
		}
		return wizard.MergeStep(current.Data, patch, step, wizard.ProfileSteps), nil
	})
	if err != nil {
		return StepResult{}, err
	}
	updated, err := decodeProfile(snap)
	if err != nil {
		return StepResult{}, err
	}

	s.log.Info("profile step saved",
		zap.String("uid", uid), zap.Stringer("step", wizard.ProfileStep(step)),
		zap.Float64("completion", updated.ProfileCompletion), zap.Int64("version", snap.Version))

	return StepResult{
		Step:       seq.Current(),
		Location:   seq.Location(ProfileBase),
		Completion: updated.ProfileCompletion,
		Profile:    &updated,
	}, nil
}

// Retreat moves back one step without validating anything.
func (s *ProfileService) Retreat(ctx context.Context, uid, email string, step int) (StepResult, error) {
	profile, _, err := s.Load(ctx, uid, email)
	if err != nil {
		return StepResult{}, err
	}
	seq, err := wizard.NewSequencer(wizard.ProfileSteps, strconv.Itoa(step), profile.ProfileLocked)
	if err != nil {
		return StepResult{}, err
	}
	if res, err := reachedStep(profile, step); err != nil {
		return res, err
	}
	if err := seq.Retreat(); err != nil {
		return StepResult{Step: seq.Current(), Location: seq.Location(ProfileBase), Completion: profile.ProfileCompletion}, err
	}

	_, err = s.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
		if err := wizardWritable(current); err != nil {
			return nil, err
		}
		return map[string]any{"currentStep": seq.Current()}, nil
	})
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Step: seq.Current(), Location: seq.Location(ProfileBase), Completion: profile.ProfileCompletion}, nil
}

// AddQualification validates a single entry and appends it to the saved list.
func (s *ProfileService) AddQualification(ctx context.Context, uid string, entry models.QualificationEntry) ([]models.QualificationEntry, validators.FieldErrors, error) {
	entry = wizard.ApplyDerived(entry)
	if errs := validators.Struct(entry); !errs.OK() {
		return nil, errs, wizard.ErrValidationFailed
	}
	list, err := s.updateQualifications(ctx, uid, func(list []models.QualificationEntry) ([]models.QualificationEntry, error) {
		return append(list, entry), nil
	})
	return list, nil, err
}

// RemoveQualification drops the entry at index from the saved list.
func (s *ProfileService) RemoveQualification(ctx context.Context, uid string, index int) ([]models.QualificationEntry, error) {
	return s.updateQualifications(ctx, uid, func(list []models.QualificationEntry) ([]models.QualificationEntry, error) {
		if index < 0 || index >= len(list) {
			return nil, ErrIndexOutOfRange
		}
		return append(list[:index:index], list[index+1:]...), nil
	})
}

func (s *ProfileService) updateQualifications(ctx context.Context, uid string, fn func([]models.QualificationEntry) ([]models.QualificationEntry, error)) ([]models.QualificationEntry, error) {
	var result []models.QualificationEntry
	_, err := s.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
		if !current.Exists() {
			return nil, store.ErrNotFound
		}
		profile, err := decodeProfile(current)
		if err != nil {
			return nil, err
		}
		if profile.ProfileLocked || profile.FinalizeState == models.FinalizeStateFinalizing {
			return nil, wizard.ErrProfileLocked
		}
		next, err := fn(profile.Qualifications)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []models.QualificationEntry{}
		}
		result = next
		return wizard.ToMap(wizard.QualificationStep{Qualifications: next})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UploadAsset stores the candidate photo or signature and returns its URL. The
// URL is saved with the additional details step.
func (s *ProfileService) UploadAsset(ctx context.Context, uid, kind string, fh *multipart.FileHeader) (store.StoredFile, error) {
	if kind != "photo" && kind != "sign" {
		return store.StoredFile{}, ErrUnknownAsset
	}
	stored, err := utils.SaveUploadedFile(ctx, s.files, fh, "users/"+uid+"/"+kind)
	if err != nil {
		return store.StoredFile{}, err
	}
	s.log.Info("profile asset uploaded", zap.String("uid", uid), zap.String("kind", kind), zap.String("object", stored.Object))
	return stored, nil
}

// Finalize seals the profile. The snapshot goes to the secondary store first and
// only then is the lock flag set, so a locked profile always has a snapshot. The
// lock is only written over the version the snapshot was taken from; a profile
// that changed in between is snapshotted again. Calling it again on a sealed
// profile changes nothing.
func (s *ProfileService) Finalize(ctx context.Context, uid string) (models.CandidateProfile, error) {
	for attempt := 1; ; attempt++ {
		sealed, err := s.finalize(ctx, uid)
		if !errors.Is(err, errFinalizeRaced) {
			return sealed, err
		}
		if attempt == finalizeAttempts {
			return models.CandidateProfile{}, fmt.Errorf("%w: %v", ErrFinalizeIncomplete, err)
		}
		s.log.Warn("profile changed during finalize, retrying", zap.String("uid", uid), zap.Int("attempt", attempt))
	}
}

func (s *ProfileService) finalize(ctx context.Context, uid string) (models.CandidateProfile, error) {
	snap, err := s.docs.Get(ctx, models.CollectionUsers, uid)
	if err != nil {
		return models.CandidateProfile{}, err
	}
	profile, err := decodeProfile(snap)
	if err != nil {
		return models.CandidateProfile{}, err
	}
	if profile.ProfileLocked && profile.FinalizeState == models.FinalizeStateSealed {
		return profile, nil
	}
	if profile.CurrentStep < wizard.ProfileSteps {
		return models.CandidateProfile{}, wizard.ErrStepNotReached
	}

	prior := profile.FinalizeState
	if prior != models.FinalizeStateFinalizing {
		snap, err = s.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
			if current.Version != snap.Version {
				return nil, errFinalizeRaced
			}
			return map[string]any{"finalizeState": models.FinalizeStateFinalizing}, nil
		})
		if err != nil {
			if errors.Is(err, errFinalizeRaced) {
				return models.CandidateProfile{}, err
			}
			return models.CandidateProfile{}, fmt.Errorf("mark finalizing: %w", err)
		}
	}

	sealed := profile
	sealed.ProfileLocked = true
	sealed.ProfileCompletion = 100
	sealed.FinalizeState = models.FinalizeStateSealed
	sealed.CurrentStep = wizard.ProfileSteps
	value, err := wizard.ToMap(sealed)
	if err != nil {
		return models.CandidateProfile{}, err
	}
	value["finalizedAt"] = time.Now().UTC().Format(time.RFC3339)

	if err := s.snaps.SetValue(ctx, models.CollectionUsers+"/"+uid, value); err != nil {
		s.log.Error("finalize snapshot failed", zap.String("uid", uid), zap.Error(err))
		if _, rerr := s.docs.Merge(ctx, models.CollectionUsers, uid, map[string]any{"finalizeState": prior}); rerr != nil {
			s.log.Error("restoring finalize state failed", zap.String("uid", uid), zap.Error(rerr))
		}
		return models.CandidateProfile{}, fmt.Errorf("%w: %v", ErrSnapshotFailed, err)
	}

	lock := map[string]any{
		"profileLocked":     true,
		"profileCompletion": 100,
		"photoUrl":          profile.PhotoURL,
		"signUrl":           profile.SignURL,
		"finalizeState":     models.FinalizeStateSealed,
		"currentStep":       wizard.ProfileSteps,
	}
	_, err = s.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
		if current.Version != snap.Version {
			return nil, errFinalizeRaced
		}
		return lock, nil
	})
	if errors.Is(err, errFinalizeRaced) {
		return models.CandidateProfile{}, err
	}
	if err != nil {
		s.log.Error("finalize lock failed, profile left finalizing", zap.String("uid", uid), zap.Error(err))
		return models.CandidateProfile{}, fmt.Errorf("%w: %v", ErrFinalizeIncomplete, err)
	}

	s.log.Info("profile finalized", zap.String("uid", uid))
	return sealed, nil
}

// Watch streams versions of the candidate document, oldest first, dropping any
// snapshot not newer than lastVersion or than one already delivered.
func (s *ProfileService) Watch(ctx context.Context, uid string, lastVersion int64) (<-chan store.Snapshot, func(), error) {
	sub, err := s.docs.Subscribe(ctx, models.CollectionUsers, uid)
	if err != nil {
		return nil, nil, err
	}

	rec := &Reconciler{}
	rec.Local(store.Snapshot{Version: lastVersion})

	out := make(chan store.Snapshot)
	go func() {
		defer close(out)
		for snap := range sub.Updates() {
			if !rec.Remote(snap) {
				s.log.Debug("dropping stale snapshot", zap.String("uid", uid), zap.Int64("version", snap.Version))
				continue
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				sub.Close()
				return
			}
		}
	}()
	return out, sub.Close, nil
}

// reachedStep refuses steps past the saved wizard position. A profile that
// never saved a step is at step 1.
func reachedStep(profile models.CandidateProfile, step int) (StepResult, error) {
	reached := profile.CurrentStep
	if reached < 1 {
		reached = 1
	}
	if step <= reached {
		return StepResult{}, nil
	}
	return StepResult{
		Step:       reached,
		Location:   fmt.Sprintf("%s?step=%d", ProfileBase, reached),
		Completion: profile.ProfileCompletion,
	}, wizard.ErrStepNotReached
}

// wizardWritable refuses wizard edits once finalize has started.
func wizardWritable(current store.Snapshot) error {
	if locked, _ := current.Data["profileLocked"].(bool); locked {
		return wizard.ErrProfileLocked
	}
	if state, _ := current.Data["finalizeState"].(string); state == models.FinalizeStateFinalizing {
		return wizard.ErrProfileLocked
	}
	return nil
}

func decodeProfile(snap store.Snapshot) (models.CandidateProfile, error) {
	var profile models.CandidateProfile
	if err := snap.DataTo(&profile); err != nil {
		return models.CandidateProfile{}, fmt.Errorf("decode profile %s: %w", snap.ID, err)
	}
	return profile, nil
}
