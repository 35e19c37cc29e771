package metrics

// Operations recorded by the consensus engine.
const (
	OpLabelRecord       = "label_record"
	OpLabelRetract      = "label_retract"
	OpBallotSubmit      = "ballot_submit"
	OpRuleAdd           = "rule_add"
	OpRuleUpdate        = "rule_update"
	OpRuleFinalize      = "rule_finalize"
	OpRoundCreate       = "round_create"
	OpRoundClose        = "round_close"
	OpSweep             = "sweep"
	OpReviewUpsert      = "review_upsert"
	OpDiscrepancyFlag   = "discrepancy_flag"
	OpDiscrepancyReport = "discrepancy_report"
	OpTransaction       = "transaction"
	OpTransactionRetry  = "transaction_retry"
	OpPolicyCache       = "policy_cache"
)

// Common status values.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusHit      = "hit"
	StatusMiss     = "miss"
)

// Histogram bucket configuration: 1ms doubling 15 times, up to ~16s.
const (
	BucketStart1ms = 0.001
	BucketFactor2  = 2
	BucketCount15  = 15
)
