package item

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Prompt       *string
	Answer       *string
	Tags         *Tags
	MasteryCount *int
	NeedsReview  *bool
	ErrorCount   *int
	Answered     *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Prompt == nil && p.Answer == nil && p.Tags == nil &&
		p.MasteryCount == nil && p.NeedsReview == nil &&
		p.ErrorCount == nil && p.Answered == nil
}

// Apply returns a copy of it with the patch applied.
func (p Patch) Apply(it Item) Item {
	if p.Prompt != nil {
		it.Prompt = *p.Prompt
	}
	if p.Answer != nil {
		it.Answer = *p.Answer
	}
	if p.Tags != nil {
		it.Tags = NewTags(*p.Tags...)
	}
	if p.MasteryCount != nil {
		it.MasteryCount = *p.MasteryCount
	}
	if p.NeedsReview != nil {
		it.NeedsReview = *p.NeedsReview
	}
	if p.ErrorCount != nil {
		it.ErrorCount = *p.ErrorCount
	}
	if p.Answered != nil {
		it.Answered = *p.Answered
	}
	return it
}

// Merge overlays newer on p. Fields set in newer win.
func (p Patch) Merge(newer Patch) Patch {
	if newer.Prompt != nil {
		p.Prompt = newer.Prompt
	}
	if newer.Answer != nil {
		p.Answer = newer.Answer
	}
	if newer.Tags != nil {
		p.Tags = newer.Tags
	}
	if newer.MasteryCount != nil {
		p.MasteryCount = newer.MasteryCount
	}
	if newer.NeedsReview != nil {
		p.NeedsReview = newer.NeedsReview
	}
	if newer.ErrorCount != nil {
		p.ErrorCount = newer.ErrorCount
	}
	if newer.Answered != nil {
		p.Answered = newer.Answered
	}
	return p
}

// ClearProgress is the patch used by reset-all.
func ClearProgress() Patch {
	zero, no := 0, false
	return Patch{MasteryCount: &zero, NeedsReview: &no, ErrorCount: &zero, Answered: &no}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
