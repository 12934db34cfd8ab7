package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

var errContentRequired = errors.New("content is required")

func newFeedCmd(app *App) *cobra.Command {
	var showComments bool

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the class feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				posts []model.Post
				err   error
			)
			err = app.withSpinner("Loading feed...", func() error {
				posts, err = app.Feed.LoadFeed(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}

			if len(posts) == 0 {
				_, _ = mutedColor.Fprintln(app.Out, "The feed is empty.")
				return nil
			}

			me := app.Session.UserID()
			table := newTable(app.Out, "ID", "Author", "Post", "Likes", "Comments", "Posted")
			for _, p := range posts {
				likes := strconv.Itoa(len(p.Likes))
				if p.LikedBy(me) {
					likes += " ♥"
				}
				table.Append([]string{
					p.ID,
					p.CreatedBy.Email,
					truncate(p.Content, 60),
					likes,
					strconv.Itoa(len(p.Comments)),
					formatWhen(p.CreatedAt),
				})
			}
			table.Render()

			if showComments {
				for _, p := range posts {
					if len(p.Comments) == 0 {
						continue
					}
					_, _ = fmt.Fprintf(app.Out, "\n%s\n", p.ID)
					for _, c := range p.Comments {
						_, _ = fmt.Fprintf(app.Out, "  [%s] %s: %s\n", c.ID, c.CreatedBy.Email, truncate(c.Content, 80))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showComments, "comments", false, "also print comments")

	return cmd
}

func newPostCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "post <content>",
		Short: "Publish a status update",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if strings.TrimSpace(content) == "" {
				return errContentRequired
			}

			var (
				post *model.Post
				err  error
			)
			err = app.withSpinner("Posting...", func() error {
				post, err = app.Feed.CreatePost(cmd.Context(), content)
				return err
			})
			if err != nil {
				return err
			}

			printSuccess(app.Out, "Posted %s", post.ID)
			return nil
		},
	}
}

func newLikeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "like <postID>",
		Short: "Like a post, or unlike it if already liked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID := args[0]

			var (
				post *model.Post
				err  error
			)
			err = app.withSpinner("Updating like...", func() error {
				// The toggle direction comes from the local copy, so load it first.
				if _, err := app.Feed.LoadFeed(cmd.Context()); err != nil {
					return err
				}
				post, err = app.Feed.ToggleLike(cmd.Context(), postID)
				return err
			})
			if err != nil {
				return err
			}

			if post.LikedBy(app.Session.UserID()) {
				printSuccess(app.Out, "Liked %s (%d likes)", postID, len(post.Likes))
			} else {
				printSuccess(app.Out, "Unliked %s (%d likes)", postID, len(post.Likes))
			}
			return nil
		},
	}
}

func newCommentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <postID> <content>",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID := args[0]
			content := strings.Join(args[1:], " ")
			if strings.TrimSpace(content) == "" {
				return errContentRequired
			}

			var (
				post *model.Post
				err  error
			)
			err = app.withSpinner("Commenting...", func() error {
				post, err = app.Feed.AddComment(cmd.Context(), postID, content)
				return err
			})
			if err != nil {
				return err
			}

			printSuccess(app.Out, "Commented on %s (%d comments)", postID, len(post.Comments))
			return nil
		},
	}
}

func newRmPostCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-post <postID>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID := args[0]

			err := app.withSpinner("Deleting post...", func() error {
				if _, err := app.Feed.LoadFeed(cmd.Context()); err != nil {
					return err
				}
				return app.Feed.DeletePost(cmd.Context(), postID)
			})
			if err != nil {
				return err
			}

			printSuccess(app.Out, "Deleted post %s (%d posts left)", postID, len(app.Feed.Posts()))
			return nil
		},
	}
}

func newRmCommentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-comment <postID> <commentID>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.withSpinner("Deleting comment...", func() error {
				return app.Feed.DeleteComment(cmd.Context(), args[0], args[1])
			})
			if err != nil {
				return err
			}

			printSuccess(app.Out, "Deleted comment %s", args[1])
			return nil
		},
	}
}
