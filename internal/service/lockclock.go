package service

import "time"

const (
	LeadRecontactLock        = 90 * 24 * time.Hour
	AssociationRejectionLock = 14 * 24 * time.Hour
	VisitCancellationCutoff  = 24 * time.Hour
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

func ComputeLock(now time.Time, d time.Duration) time.Time {
	return now.Add(d)
}

// IsLocked reports whether lockUntil is set and still ahead of now.
func IsLocked(lockUntil *time.Time, now time.Time) bool {
	return lockUntil != nil && now.Before(*lockUntil)
}

// PastCutoff reports whether now falls inside the window of length cutoff
// that ends at deadline.
func PastCutoff(deadline, now time.Time, cutoff time.Duration) bool {
	return now.After(deadline.Add(-cutoff))
}
