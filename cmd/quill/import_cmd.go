package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/store"
)

func newImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		author string
		email  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.md>...",
		Short: "Publish markdown files with optional YAML front matter",
		Long: "Publish markdown files. Front matter may set title, author, email, date\n" +
			"(YYYY-MM-DD), featured and published. Without a title, a leading \"# heading\" is used.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts := make([]importedPost, 0, len(args))
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				front, body, err := parseMarkdown(string(raw))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				post, err := front.toImportedPost(body, author, email)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				posts = append(posts, post)
			}

			if dryRun {
				for i, post := range posts {
					if err := writePlain("%s: %q by %s on %s\n", args[i], post.Blog.Title, post.Author.Name, post.Blog.PublishedOn.Format(models.DateLayout)); err != nil {
						return err
					}
				}
				return nil
			}

			return withSession(cmd.Context(), cfg, func(bs store.BlogStore) error {
				created := make([]models.Blog, 0, len(posts))
				for i, post := range posts {
					blog, err := bs.PublishBlog(cmd.Context(), post.Author, post.Blog)
					if err != nil {
						return fmt.Errorf("%s: %w", args[i], err)
					}
					created = append(created, *blog)
				}
				if *jsonOutput {
					return writeJSON(api.NewBlogListResponse(created))
				}
				return writeBlogList(blogResponses(created))
			})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author name when the front matter has none")
	cmd.Flags().StringVar(&email, "email", "", "author email when the front matter has none")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse files without publishing")
	return cmd
}
