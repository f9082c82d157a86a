package convert

import (
	"fmt"
	"io"

	"blogger2jekyll/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ImportCommand returns the "import" command.
func ImportCommand() *cobra.Command {
	opts := DefaultOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a Blogger export into a Jekyll site",
		Long: `Import a Blogger export into a Jekyll site.

The source is the XML file produced by Blogger's "Back up content", or a
Google Takeout folder or zip files holding Blogger/Blogs/<blog>/feed.atom.
Published posts are written into _posts, drafts into _drafts.`,
		Example: `  blogger2jekyll import --source blog-11-01-2017.xml --replace-internal-link
  blogger2jekyll import --source "takeout-*.zip" --blog "My blog" --format markdown --dest site`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				f, err := config.Load(configFile)
				if err != nil {
					return err
				}
				applyConfig(cmd.Flags(), f, &opts)
			}

			result, err := Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), opts, result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.Source, "source", nil, "Blogger export file, Takeout folder or Takeout zip file, repeat it for each part (required unless set in --config)")
	flags.BoolVar(&opts.NoBloggerInfo, "no-blogger-info", false, "Don't keep the Blogger id and URL in the front matter")
	flags.BoolVar(&opts.ReplaceInternalLink, "replace-internal-link", false, "Replace links between posts with the post_url Liquid tag")
	flags.StringVar(&opts.Dest, "dest", opts.Dest, "Jekyll site folder")
	flags.StringVar((*string)(&opts.Format), "format", string(opts.Format), "Format of the post bodies: html or markdown")
	flags.StringVar(&opts.Layout, "layout", opts.Layout, "Layout of the imported posts")
	flags.StringVar((*string)(&opts.OnConflict), "on-conflict", string(opts.OnConflict), "When a file exists: overwrite, skip or fail")
	flags.StringVar(&opts.BaseURL, "base-url", "", "Blog address, when the export doesn't give it (https://name.blogspot.com)")
	flags.StringVar(&opts.Blog, "blog", "", "Blog name or pattern, when the Takeout holds several blogs")
	flags.BoolVar(&opts.Comments, "comments", false, "Append the comments to the posts")
	flags.StringVar(&configFile, "config", "", "TOML file with the options, flags take precedence")
	return cmd
}

// applyConfig copies the values of the file into opts, except for the
// flags given on the command line.
func applyConfig(flags *pflag.FlagSet, f *config.File, opts *Options) {
	setString := func(name string, v *string, dst *string) {
		if v != nil && !flags.Changed(name) {
			*dst = *v
		}
	}
	setBool := func(name string, v *bool, dst *bool) {
		if v != nil && !flags.Changed(name) {
			*dst = *v
		}
	}

	if f.Source != nil && !flags.Changed("source") {
		opts.Source = []string{*f.Source}
	}
	setString("dest", f.Dest, &opts.Dest)
	setString("format", f.Format, (*string)(&opts.Format))
	setString("layout", f.Layout, &opts.Layout)
	setString("on-conflict", f.OnConflict, (*string)(&opts.OnConflict))
	setString("base-url", f.BaseURL, &opts.BaseURL)
	setString("blog", f.Blog, &opts.Blog)
	setBool("no-blogger-info", f.NoBloggerInfo, &opts.NoBloggerInfo)
	setBool("replace-internal-link", f.ReplaceInternalLink, &opts.ReplaceInternalLink)
	setBool("comments", f.Comments, &opts.Comments)
}

func printSummary(w io.Writer, opts Options, r *Result) {
	fmt.Fprintf(w, "%s: %s files written into %s\n",
		blogTitleStyle.Render(r.Blog), countStyle.Render(fmt.Sprint(len(r.Written))), opts.Dest)
	fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf("%d posts, %d drafts, %d existing files kept", r.Posts, r.Drafts, len(r.Skipped))))
	if opts.ReplaceInternalLink {
		fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf("%d internal links rewritten, %d left unresolved", r.LinksRewritten, r.LinksUnresolved)))
	}
}
