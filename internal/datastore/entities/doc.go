// Package entities defines the GORM models persisted by quorum.
//
// Table names come from GORM's naming strategy so that a MySQL table
// prefix configured on the connection applies to every table. Models
// therefore do not implement TableName.
//
// Uniqueness rules that guard against concurrent writers live here as
// unique indexes, not only as application checks:
//
//   - members: UNIQUE(project_id, user_id)
//   - voting_rounds: UNIQUE(project_id, version) and UNIQUE(open_project_id)
//   - ballots: UNIQUE(rule_id, member_id)
//   - dataset_reviews: UNIQUE(item_id, reviewer_id)
//   - manual_discrepancies: UNIQUE(item_id, member_id)
package entities
