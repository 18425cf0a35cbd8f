package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/timefmt"
)

const replyIndent = "    "

// render печатает дерево: корни по порядку, под каждым ответы с отступом.
func render(w io.Writer, roots []models.Comment, f *timefmt.Formatter) {
	if len(roots) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return
	}

	for i, c := range roots {
		if i > 0 {
			fmt.Fprintln(w)
		}

		renderOne(w, "", c, f)
		for _, r := range c.Replies {
			renderOne(w, replyIndent, r, f)
		}
	}
}

func renderOne(w io.Writer, indent string, c models.Comment, f *timefmt.Formatter) {
	header := fmt.Sprintf("%s[%s] %s", indent, c.ID, c.AuthorName)
	if c.AuthorRole != "" {
		header += " (" + c.AuthorRole + ")"
	}
	header += " · " + f.Format(c.CreatedAt)
	if c.IsEdited {
		header += " · edited"
	}
	fmt.Fprintln(w, header)

	for _, line := range strings.Split(c.Content, "\n") {
		fmt.Fprintf(w, "%s  %s\n", indent, line)
	}

	reactions := fmt.Sprintf("%s  like %d · dislike %d", indent, c.ReactionCounts.Like, c.ReactionCounts.Dislike)
	if c.CurrentUserReaction != models.ReactionNone {
		reactions += fmt.Sprintf(" · you: %s", c.CurrentUserReaction)
	}
	fmt.Fprintln(w, reactions)
}
