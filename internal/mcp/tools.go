package mcp

import "github.com/mark3labs/mcp-go/mcp"

var storeToolDef = mcp.NewTool("contact_store",
	mcp.WithDescription("Store a contact. Omit contact.id to have one generated. "+
		"With mode \"replace\", an existing contact with the same id is overwritten."),
	mcp.WithObject("contact",
		mcp.Required(),
		mcp.Description("Contact record: name parts, nickname, phone_numbers, emails, events, addresses, "+
			"notes, organization, websites, thumbnail, starred. Events use YYYY-MM-DD or --MM-DD."),
	),
	mcp.WithString("mode",
		mcp.Description("Collision behavior when contact.id already exists"),
		mcp.Enum("error", "replace"),
	),
)

var fetchToolDef = mcp.NewTool("contact_fetch",
	mcp.WithDescription("Fetch a single contact by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
	mcp.WithBoolean("include_deleted", mcp.Description("Also return soft-deleted contacts")),
)

var listToolDef = mcp.NewTool("contact_list",
	mcp.WithDescription("List contact summaries ordered by name."),
	mcp.WithString("name_prefix", mcp.Description("Only contacts whose display name starts with this prefix")),
	mcp.WithBoolean("starred_only", mcp.Description("Only starred contacts")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted contacts")),
)

var deleteToolDef = mcp.NewTool("contact_delete",
	mcp.WithDescription("Soft-delete a contact. It can still be fetched with include_deleted until purged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
)

var purgeToolDef = mcp.NewTool("contact_purge",
	mcp.WithDescription("Permanently delete soft-deleted contacts."),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge contacts deleted more than this many days ago")),
)

var importToolDef = mcp.NewTool("contact_import",
	mcp.WithDescription("Import contacts from a JSONL file with one contact record per line."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .jsonl file")),
	mcp.WithString("mode",
		mcp.Description("error: all-or-nothing; replace: overwrite on id collision and skip bad lines"),
		mcp.Enum("error", "replace"),
	),
)

var exportToolDef = mcp.NewTool("contact_export",
	mcp.WithDescription("Export contacts as vCard 4.0. Contacts that cannot be encoded are skipped "+
		"and reported; the outcome is ok, partial or fail."),
	mcp.WithString("path", mcp.Description("Destination .vcf file (default: ~/.rolodex/exports/contacts-<timestamp>.vcf)")),
	mcp.WithArray("ids",
		mcp.Description("Export only these contacts, in this order"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted contacts")),
	mcp.WithBoolean("inline", mcp.Description("Return the vCard text in the result instead of writing a file")),
	mcp.WithBoolean("notify", mcp.Description("Send a log notification to the client before the export starts")),
	mcp.WithString("photo_dir", mcp.Description("Directory used to resolve relative thumbnail paths")),
)
