package logging

// ProgressSampler suppresses repetitive progress events while preserving
// signal on every integer-percent change. The pipeline uses it to bound the
// callback and log volume for jobs with thousands of frames.
type ProgressSampler struct {
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percentage
// crosses bucket boundaries (default 1%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 1
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldEmit reports whether a progress event for completed/total frames
// should be surfaced. The final frame always emits so a consumer observing
// only sampled events still sees 100%.
func (s *ProgressSampler) ShouldEmit(completed, total int) bool {
	if s == nil || total <= 0 {
		return true
	}
	if completed >= total {
		s.lastBucket = int(100 / s.bucketSize)
		return true
	}
	percent := float64(completed) / float64(total) * 100
	bucket := int(percent / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state when a new job starts.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
