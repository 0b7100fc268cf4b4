package model

// Return is a single job completion reported by a worker ("minion").
type Return struct {
	// Minion is the id of the worker that executed the job.
	Minion string `json:"id" bson:"minion"`

	// Jid identifies the job this return belongs to.
	Jid string `json:"jid" bson:"jid"`

	// Fun is the name of the executed function, e.g. "test.ping".
	Fun string `json:"fun" bson:"fun"`

	// Return is the raw return value; a document or a plain scalar.
	Return any `json:"return" bson:"return"`

	// Out optionally names the outputter format for the return value.
	Out string `json:"out,omitempty" bson:"out,omitempty"`

	// Full is the complete original record, archived alongside the
	// formatted fields for audit and debugging. When nil, a record is
	// synthesized from the fields above.
	Full map[string]any `json:"-" bson:"-"`

	// RetConfig selects an alternative configuration profile for this
	// call; empty means the default namespace.
	RetConfig string `json:"ret_config,omitempty" bson:"-"`

	// RetKwargs are per-call option overrides with the highest
	// configuration precedence.
	RetKwargs map[string]any `json:"ret_kwargs,omitempty" bson:"-"`
}

// FullRecord returns the complete original record for archival, building
// one from the structured fields when the caller did not supply it.
func (r *Return) FullRecord() map[string]any {
	if r.Full != nil {
		return r.Full
	}

	full := map[string]any{
		"id":     r.Minion,
		"jid":    r.Jid,
		"fun":    r.Fun,
		"return": r.Return,
	}
	if r.Out != "" {
		full["out"] = r.Out
	}
	return full
}
