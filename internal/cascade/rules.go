package cascade

import "context"

// step is one dependent-row deletion executed before the parent delete.
type step struct {
	name string
	run  func(ctx context.Context, tx Tx, id string) error
}

// rule names the parent table and the ordered child deletions for one kind.
type rule struct {
	table string
	steps []step
}

func deleteWhere(name, sql string) step {
	return step{name: name, run: func(ctx context.Context, tx Tx, id string) error {
		_, err := tx.Exec(ctx, sql, id)
		return err
	}}
}

// rules is the fixed set of parent kinds with dependents, keyed by the
// entity-kind name used in the delete endpoint.
var rules = map[string]rule{
	"events": {
		table: "events",
		steps: []step{
			deleteWhere("bookings", `DELETE FROM bookings WHERE event_id=$1`),
		},
	},
	"articles": {
		table: "articles",
		steps: []step{
			{name: "comment reactions", run: deleteCommentReactions},
			deleteWhere("comments", `DELETE FROM article_comments WHERE article_id=$1`),
			deleteWhere("article reactions", `DELETE FROM reactions WHERE subject_kind='article' AND subject_id=$1`),
			deleteWhere("views", `DELETE FROM article_views WHERE article_id=$1`),
		},
	},
	"communication-categories": {
		table: "communication_categories",
		steps: []step{
			deleteWhere("category roles", `DELETE FROM category_roles WHERE category_id=$1`),
			deleteWhere("notification preferences", `DELETE FROM notification_preferences WHERE category_id=$1`),
		},
	},
}

// deleteCommentReactions removes reactions on every comment of the article.
func deleteCommentReactions(ctx context.Context, tx Tx, articleID string) error {
	commentIDs, err := tx.QueryStrings(ctx, `SELECT id::text FROM article_comments WHERE article_id=$1`, articleID)
	if err != nil {
		return err
	}
	if len(commentIDs) == 0 {
		return nil
	}
	_, err = tx.Exec(ctx, `DELETE FROM reactions WHERE subject_kind='comment' AND subject_id = ANY($1::uuid[])`, commentIDs)
	return err
}
