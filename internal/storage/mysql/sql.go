package mysql

// `comment` is reserved in some modes; keep it quoted everywhere.
const reviewColumns = "id, subject_id, subject_type, reviewer_name, rating, `comment`, created_at, updated_at"

const insertReviewSQL = `
INSERT INTO reviews
  (` + reviewColumns + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const updateReviewSQL = "UPDATE reviews SET\n" +
	"  subject_id    = ?,\n" +
	"  subject_type  = ?,\n" +
	"  reviewer_name = ?,\n" +
	"  rating        = ?,\n" +
	"  `comment`     = ?,\n" +
	"  updated_at    = ?\n" +
	"WHERE id = ?"

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getReviewSQL = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`

// listReviewsPrefix is completed by buildListQuery with optional predicates.
const listReviewsPrefix = `SELECT ` + reviewColumns + ` FROM reviews`

// Newest first; ties broken by id so paging over the result is stable.
const listReviewsOrder = ` ORDER BY created_at DESC, id DESC`

const subjectStatsSQL = `
SELECT COALESCE(AVG(rating), 0), COUNT(*)
FROM reviews
WHERE subject_type = ? AND subject_id = ?
`
