package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/store"
)

func newPostCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "List, show, add and like blog posts",
	}

	cmd.AddCommand(
		newPostListCmd(cfg, jsonOutput),
		newPostShowCmd(cfg, jsonOutput),
		newPostAddCmd(cfg, jsonOutput),
		newPostLikeCmd(cfg, jsonOutput, true),
		newPostLikeCmd(cfg, jsonOutput, false),
	)
	return cmd
}

type postListFlags struct {
	search   string
	title    string
	author   int64
	featured bool
	sort     string
	order    string
	limit    int
	offset   int
}

func (f postListFlags) query() url.Values {
	query := url.Values{}
	setIfNotEmpty(query, "search", f.search)
	setIfNotEmpty(query, "title", f.title)
	setIfNotEmpty(query, "sort", f.sort)
	setIfNotEmpty(query, "order", f.order)
	if f.author > 0 {
		query.Set("author", strconv.FormatInt(f.author, 10))
	}
	if f.featured {
		query.Set("featured", "true")
	}
	if f.limit > 0 {
		query.Set("limit", strconv.Itoa(f.limit))
	}
	if f.offset > 0 {
		query.Set("offset", strconv.Itoa(f.offset))
	}
	return query
}

func (f postListFlags) filter() (store.BlogFilter, error) {
	key, order, err := models.ParseSort(f.sort, f.order)
	if err != nil {
		return store.BlogFilter{}, err
	}
	filter := store.BlogFilter{
		TitleContains: f.title,
		Search:        f.search,
		AuthorID:      f.author,
		SortBy:        key,
		SortOrder:     order,
		Limit:         f.limit,
		Offset:        f.offset,
	}
	if f.featured {
		featured := true
		filter.Featured = &featured
	}
	return filter, nil
}

func newPostListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		flags  postListFlags
		remote string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blog posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote != "" {
				resp, err := api.NewClient(remote).ListBlogs(cmd.Context(), flags.query())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeBlogList(resp.Blogs)
			}

			filter, err := flags.filter()
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), cfg, func(bs store.BlogStore) error {
				if *jsonOutput {
					blogs, err := bs.ListBlogs(cmd.Context(), filter)
					if err != nil {
						return err
					}
					return writeJSON(api.NewBlogListResponse(blogs))
				}
				for blog, err := range bs.Blogs(cmd.Context(), filter) {
					if err != nil {
						return err
					}
					if err := writePlain("%s\n", formatBlogLine(api.NewBlogResponse(blog))); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.search, "search", "", "match title, content or author name")
	cmd.Flags().StringVar(&flags.title, "title", "", "title contains")
	cmd.Flags().Int64Var(&flags.author, "author", 0, "author id")
	cmd.Flags().BoolVar(&flags.featured, "featured", false, "only featured posts")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "sort key: date|views|likes|title|author")
	cmd.Flags().StringVar(&flags.order, "order", "", "sort order: asc|desc")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "limit results")
	cmd.Flags().IntVar(&flags.offset, "offset", 0, "offset results")
	cmd.Flags().StringVar(&remote, "remote", "", "read from a running server at this base URL")
	return cmd
}

func newPostShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one blog post without counting a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlogID(args[0])
			if err != nil {
				return err
			}

			var resp api.BlogResponse
			if remote != "" {
				// The HTTP read always counts as a view.
				resp, err = api.NewClient(remote).GetBlog(cmd.Context(), id)
				if err != nil {
					return err
				}
			} else {
				err = withSession(cmd.Context(), cfg, func(bs store.BlogStore) error {
					blog, err := bs.PeekBlog(cmd.Context(), id)
					if err != nil {
						return err
					}
					resp = api.NewBlogResponse(*blog)
					return nil
				})
				if err != nil {
					return err
				}
			}

			if *jsonOutput {
				return writeJSON(resp)
			}
			return writeBlogDetail(resp)
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "read from a running server at this base URL")
	return cmd
}

func newPostAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		title    string
		author   string
		email    string
		date     string
		content  string
		file     string
		featured bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Publish a new blog post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				if content != "" {
					return errors.New("use either --content or --file, not both")
				}
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				content = string(raw)
			}

			publishedOn := time.Now()
			if strings.TrimSpace(date) != "" {
				parsed, err := time.Parse(models.DateLayout, strings.TrimSpace(date))
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				publishedOn = parsed
			}

			return withSession(cmd.Context(), cfg, func(bs store.BlogStore) error {
				blog, err := bs.PublishBlog(cmd.Context(),
					store.AuthorInput{Name: author, Email: email},
					store.BlogInput{Title: title, Content: content, PublishedOn: publishedOn, Featured: featured},
				)
				if err != nil {
					return err
				}
				resp := api.NewBlogResponse(*blog)
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeBlogDetail(resp)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&author, "author", "", "author name")
	cmd.Flags().StringVar(&email, "email", "", "author email; an existing author with this email is reused")
	cmd.Flags().StringVar(&date, "date", "", "publication date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&content, "content", "", "post body in markdown")
	cmd.Flags().StringVar(&file, "file", "", "read the post body from a file")
	cmd.Flags().BoolVar(&featured, "featured", false, "mark the post as featured")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newPostLikeCmd(cfg *config.Config, jsonOutput *bool, like bool) *cobra.Command {
	var remote string

	use, short := "like <id>", "Add a like to a post"
	if !like {
		use, short = "unlike <id>", "Remove a like from a post"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBlogID(args[0])
			if err != nil {
				return err
			}

			resp, err := bumpLike(cmd.Context(), cfg, remote, id, like)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(resp)
			}
			return writePlain("post %d now has %d likes\n", resp.ID, resp.LikeCount)
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "send to a running server at this base URL")
	return cmd
}

func bumpLike(ctx context.Context, cfg *config.Config, remote string, id int64, like bool) (api.LikeResponse, error) {
	if remote != "" {
		client := api.NewClient(remote)
		if like {
			return client.Like(ctx, id)
		}
		return client.Unlike(ctx, id)
	}

	var resp api.LikeResponse
	err := withSession(ctx, cfg, func(bs store.BlogStore) error {
		var (
			blog *models.Blog
			err  error
		)
		if like {
			blog, err = bs.IncrementLike(ctx, id)
		} else {
			blog, err = bs.DecrementLike(ctx, id)
		}
		if err != nil {
			return err
		}
		resp = api.LikeResponse{ID: blog.ID, LikeCount: blog.LikeCount}
		return nil
	})
	return resp, err
}

func parseBlogID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", raw)
	}
	return id, nil
}
