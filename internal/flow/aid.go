package flow

import (
	"fmt"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
)

// AidList returns the de minimis grants currently in the form.
func (f *Form) AidList() (*application.AidList, error) {
	return application.AidListFromValues(f.state.Snapshot(), f.aidMax)
}

// CanAddAid reports whether the add-grant action is enabled.
func (f *Form) CanAddAid() bool {
	l, err := f.AidList()
	return err == nil && l.CanAdd()
}

// AddAid appends grant to the form's aid list. When the total goes over the
// maximum a blocking notification is shown and further grants are refused.
func (f *Form) AddAid(grant application.DeMinimisAid) error {
	l, err := f.AidList()
	if err != nil {
		return err
	}
	if err := l.Add(grant); err != nil {
		f.refreshAidNotification()
		return err
	}
	if err := f.Set(application.DeMinimisAidSet, l.Values()); err != nil {
		return fmt.Errorf("flow: store de minimis grants: %w", err)
	}
	f.refreshAidNotification()
	return nil
}

// RemoveAid drops the grant at index i.
func (f *Form) RemoveAid(i int) error {
	l, err := f.AidList()
	if err != nil {
		return err
	}
	if err := l.Remove(i); err != nil {
		return err
	}
	if err := f.Set(application.DeMinimisAidSet, l.Values()); err != nil {
		return fmt.Errorf("flow: store de minimis grants: %w", err)
	}
	f.refreshAidNotification()
	return nil
}

// refreshAidNotification keeps exactly one blocking aid notification shown
// while the total is over the maximum.
func (f *Form) refreshAidNotification() {
	l, err := f.AidList()
	if err != nil {
		f.logger.Warn("unreadable de minimis grants", "error", err)
		return
	}
	n, show := l.Notification(f.tr)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.aidNote != 0 {
		f.center.Dismiss(f.aidNote)
		f.aidNote = 0
	}
	if show {
		f.aidNote = f.center.Push(n)
	}
}
