package tools

// AllTools lists every tool the MCP server exposes.
// Descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// CORE QUERY TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_query_list",
		Method:   "QueryList",
		Title:    "Query Wiki List",
		Category: "query",
		Description: `Run any MediaWiki list query (list=<name>) and return its records, following continuation across pages.

USE WHEN: User asks to "list all pages starting with X", "show category members", "list users", or any enumeration the API offers as a list module.

NOT FOR: Recent edits (use mediawiki_recent_changes). Tilesheet or ore dictionary data (use the ftb_* tools).

PARAMETERS:
- list: List module name, e.g. allpages, categorymembers (required)
- params: Extra list parameters such as {"apprefix": "Copper"} (optional)
- limit: Max records (default 50, max 500)

RETURNS: Raw records as returned by the API, count, and whether more were available.`,
		Extension:  "core",
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_recent_changes",
		Method:   "RecentChanges",
		Title:    "Recent Changes",
		Category: "changes",
		Description: `List the most recent wiki changes, newest first.

USE WHEN: User asks "what changed recently", "who edited lately", "show recent uploads".

NOT FOR: Enumerating pages (use mediawiki_query_list).

PARAMETERS:
- limit: Max changes (default 50, max 500)

RETURNS: Changes with type, title, user, timestamp, comment, revision ids, sizes and log type/action.`,
		Extension:  "core",
		ReadOnly:   true,
		Idempotent: false,
		OpenWorld:  true,
	},

	// ==========================================================================
	// TILESHEET TOOLS
	// ==========================================================================
	{
		Name:     "ftb_list_tiles",
		Method:   "ListTiles",
		Title:    "List Tiles",
		Category: "tilesheets",
		Description: `List tilesheet tiles (item icons), optionally for one mod.

USE WHEN: User asks "which icons does mod X have", "is there a tile for item Y", "where is Y on the sheet".

NOT FOR: Listing the sheets themselves (use ftb_list_sheets).

PARAMETERS:
- mod: Mod abbreviation, e.g. GT (optional)
- limit: Max tiles (default 100, max 500)

RETURNS: Tiles with id, mod, item name and sheet position.`,
		Extension:  "tilesheets",
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "ftb_list_sheets",
		Method:   "ListSheets",
		Title:    "List Tilesheets",
		Category: "tilesheets",
		Description: `List every mod tilesheet and its tile sizes.

USE WHEN: User asks "which mods have tilesheets", "what sizes does the X sheet have".

NOT FOR: Individual tiles (use ftb_list_tiles).

RETURNS: Sheets with mod abbreviation and "|"-separated sizes.`,
		Extension:  "tilesheets",
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// ORE DICTIONARY TOOLS
	// ==========================================================================
	{
		Name:     "ftb_list_ores",
		Method:   "ListOres",
		Title:    "List Ore Dictionary Entries",
		Category: "oredict",
		Description: `List ore dictionary entries, optionally filtered by mod and tag.

USE WHEN: User asks "which items are tagged ingotCopper", "show the ore dictionary of mod X".

NOT FOR: Tile icons (use ftb_list_tiles).

PARAMETERS:
- mod: Mod abbreviation (optional)
- tag: Ore dictionary tag, e.g. ingotCopper (optional)
- limit: Max entries (default 100, max 500)

RETURNS: Entries with id, tag name, item name, mod name and grid parameters.`,
		Extension:  "oredict",
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
