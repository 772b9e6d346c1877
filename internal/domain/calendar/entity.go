package calendar

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
)

// Bucket is a composite status such as APPROVED, PENDING_SDM or REJECTED_HR.
type Bucket string

const BucketApproved = Bucket("APPROVED")

// BucketFor returns the bucket a request's overall status counts towards.
func BucketFor(overall wfh.OverallStatus) Bucket {
	return Bucket(overall.Label())
}

// Buckets lists every bucket in display order.
func Buckets() []Bucket {
	out := []Bucket{BucketApproved}
	for _, stage := range wfh.Stages {
		out = append(out, BucketFor(wfh.OverallStatus{Status: wfh.StatusPending, Stage: stage}))
	}
	for _, stage := range wfh.Stages {
		out = append(out, BucketFor(wfh.OverallStatus{Status: wfh.StatusRejected, Stage: stage}))
	}
	return out
}

// Badge is the single summary status of a calendar cell.
type Badge string

const (
	BadgeRejected  Badge = "REJECTED"
	BadgePending   Badge = "PENDING"
	BadgePendingHR Badge = "PENDING_HR"
	BadgeApproved  Badge = "APPROVED"
	BadgeNone      Badge = "NONE"
)

// DayAggregate summarises the requests spanning one date.
type DayAggregate struct {
	Date       time.Time
	Counts     map[Bucket]int
	Teams      map[string]map[Bucket]int // team owner id -> counts
	RequestIDs []string
	Badge      Badge
}

// Total is the number of requests spanning the date.
func (d DayAggregate) Total() int {
	return len(d.RequestIDs)
}

// BadgeFor picks the most severe status present:
// REJECTED, then pending with a manager, then pending with HR, then APPROVED.
func BadgeFor(counts map[Bucket]int) Badge {
	var rejected, pending, pendingHR, approved int
	for bucket, n := range counts {
		switch {
		case bucket == BucketApproved:
			approved += n
		case bucket == BucketFor(wfh.OverallStatus{Status: wfh.StatusPending, Stage: wfh.StageHR}):
			pendingHR += n
		case strings.HasPrefix(string(bucket), string(wfh.StatusPending)):
			pending += n
		case strings.HasPrefix(string(bucket), string(wfh.StatusRejected)):
			rejected += n
		}
	}
	switch {
	case rejected > 0:
		return BadgeRejected
	case pending > 0:
		return BadgePending
	case pendingHR > 0:
		return BadgePendingHR
	case approved > 0:
		return BadgeApproved
	}
	return BadgeNone
}
