package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableItems    = "items"
	tableStates   = "user_states"
	tableAttempts = "attempts"
)

var (
	// ItemsColumns holds the columns for the "items" table.
	ItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "deceptive", Type: field.TypeBool},
		{Name: "difficulty", Type: field.TypeInt},
		{Name: "sender_name", Type: field.TypeString, Default: ""},
		{Name: "sender_address", Type: field.TypeString},
		{Name: "subject", Type: field.TypeString},
		{Name: "body", Type: field.TypeString},
		{Name: "links", Type: field.TypeJSON, Nullable: true},
		{Name: "attachments", Type: field.TypeJSON, Nullable: true},
		{Name: "category", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ItemsTable holds the schema information for the "items" table.
	ItemsTable = &schema.Table{
		Name:       tableItems,
		Columns:    ItemsColumns,
		PrimaryKey: []*schema.Column{ItemsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "item_difficulty",
				Unique:  false,
				Columns: []*schema.Column{ItemsColumns[2]},
			},
		},
	}

	// UserStatesColumns holds the columns for the "user_states" table.
	UserStatesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeFloat64},
		{Name: "streak", Type: field.TypeInt, Default: 0},
		{Name: "correct_count", Type: field.TypeInt, Default: 0},
		{Name: "total_count", Type: field.TypeInt, Default: 0},
		{Name: "last_item_id", Type: field.TypeString, Default: ""},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// UserStatesTable holds the schema information for the "user_states" table.
	UserStatesTable = &schema.Table{
		Name:       tableStates,
		Columns:    UserStatesColumns,
		PrimaryKey: []*schema.Column{UserStatesColumns[0]},
	}

	// AttemptsColumns holds the columns for the "attempts" table.
	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
		{Name: "guessed_deceptive", Type: field.TypeBool},
		{Name: "was_correct", Type: field.TypeBool},
		{Name: "target_difficulty", Type: field.TypeFloat64},
		{Name: "item_difficulty", Type: field.TypeInt},
		{Name: "response_time_ms", Type: field.TypeInt, Nullable: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	// AttemptsTable holds the schema information for the "attempts" table.
	AttemptsTable = &schema.Table{
		Name:       tableAttempts,
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "attempt_user_id_sequence",
				Unique:  false,
				Columns: []*schema.Column{AttemptsColumns[2], AttemptsColumns[1]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ItemsTable,
		UserStatesTable,
		AttemptsTable,
	}
)

var (
	itemColumns    = columnNames(ItemsColumns)
	stateColumns   = columnNames(UserStatesColumns)
	attemptColumns = columnNames(AttemptsColumns)
)

func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
