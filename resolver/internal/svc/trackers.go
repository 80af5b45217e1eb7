package svc

import "sync"

// TrackerList is the fallback tracker list. An external refresher may Set it
// at any time; resolutions read it once per call.
type TrackerList struct {
	lock     sync.RWMutex
	trackers []string
}

func NewTrackerList(trackers []string) *TrackerList {
	l := &TrackerList{}
	l.Set(trackers)
	return l
}

func (l *TrackerList) Get() []string {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return append([]string(nil), l.trackers...)
}

// Set replaces the list, skipping blank entries.
func (l *TrackerList) Set(trackers []string) {
	list := make([]string, 0, len(trackers))
	for _, tr := range trackers {
		if tr != "" {
			list = append(list, tr)
		}
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.trackers = list
}
