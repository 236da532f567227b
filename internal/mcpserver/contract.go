package mcpserver

// EntryFormatContract describes the on-disk formats LLM consumers should
// follow when reading or adding catalog entries.
const EntryFormatContract = `# Things Entry Format Contract

The catalog is a tree of content types. Each type (movies, shows, tools, ...)
gathers items from three places, merged in this priority order:

1. **Structured entries**: ` + "`src/content/<type>/**/<slug>.mdx`" + `
2. **Category lists**: ` + "`src/content/<type>/*.yaml`" + `
3. **Inbox**: ` + "`src/data/inbox/<type>.yaml`" + `

When the same slug appears more than once the higher-priority item wins; a
lower-priority item only fills in a missing note or category.

## Structured entry

` + "```" + `markdown
---
title: Heat                     # REQUIRED
summary: Crime epic.            # OPTIONAL
url: https://example.com/heat   # OPTIONAL
created: 1700000000             # epoch seconds
tags: [crime, thriller]         # first tag is the category
thoughts:
  - 1700000100: Diner scene holds up.
    where: cinema               # non-numeric keys are extra data
---

Free-form body.
` + "```" + `

## Category list and inbox files

` + "```" + `yaml
drama:
  - The Wire                    # plain title
  - "The Sopranos: rewatch"     # "Title: note" string
  - Deadwood: western           # single-key map, title -> note
` + "```" + `

## Rules

1. **Slugs** are lowercase kebab-case derived from the title ("The Wire" -> ` + "`the-wire`" + `).
2. **Categories** are plain keys; an empty category disappears from the file.
3. **Thought keys** are epoch seconds; every other key in a thought is extra data.
4. **Use add_to_inbox** for new items. Promotion to a structured entry happens later.
5. **Encoding** is UTF-8 with a trailing newline.
`
