package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/api"
	"github.com/matzehuels/kintree/pkg/chart"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// personFlags are the editable fields shared by add and edit.
type personFlags struct {
	name        string
	gender      string
	birthday    string
	location    string
	work        string
	nativePlace string
	email       string
	phone       string
	living      bool
}

func (f *personFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "full name; the first word is the first name")
	fs.StringVar(&f.gender, "gender", "", "M, F or empty for unknown")
	fs.StringVar(&f.birthday, "birthday", "", "date of birth")
	fs.StringVar(&f.location, "location", "", "current location")
	fs.StringVar(&f.work, "work", "", "where the person works")
	fs.StringVar(&f.nativePlace, "native-place", "", "native place")
	fs.StringVar(&f.email, "email", "", "contact email")
	fs.StringVar(&f.phone, "phone", "", "contact phone")
	fs.BoolVar(&f.living, "living", true, "whether the person is alive")
}

var personFlagNames = []string{"name", "gender", "birthday", "location", "work", "native-place", "email", "phone", "living"}

// changed reports whether any person field was given.
func (f *personFlags) changed(cmd *cobra.Command) bool {
	for _, name := range personFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply copies the flags the user set onto p.
func (f *personFlags) apply(cmd *cobra.Command, p *person.Person) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		p.Data.FirstName, p.Data.LastName = person.SplitName(f.name)
	}
	if changed("gender") {
		g := strings.ToUpper(strings.TrimSpace(f.gender))
		if err := errors.ValidateGender(g); err != nil {
			return err
		}
		p.Data.Gender = person.Gender(g)
	}
	fields := []struct {
		flag string
		src  string
		dst  *string
	}{
		{"birthday", f.birthday, &p.Data.Birthday},
		{"location", f.location, &p.Data.Location},
		{"work", f.work, &p.Data.Work},
		{"native-place", f.nativePlace, &p.Data.NativePlace},
		{"email", f.email, &p.Data.Contact.Email},
		{"phone", f.phone, &p.Data.Contact.Phone},
	}
	for _, fd := range fields {
		if changed(fd.flag) {
			*fd.dst = strings.TrimSpace(fd.src)
		}
	}
	if changed("living") {
		living := f.living
		p.Data.Living = &living
	}
	return nil
}

// =============================================================================
// add
// =============================================================================

func (c *CLI) addCommand() *cobra.Command {
	var (
		flags    personFlags
		relation string
		of       string
	)
	cmd := &cobra.Command{
		Use:   "add --relation <father|mother|spouse|child> --of <id> --name <name>",
		Short: "Create a relative of someone in the chart",
		Long: `Add creates a new person on the backend as the father, mother, spouse or
child of a person already in the chart. A child of someone with exactly one
spouse in the chart gets that spouse as the other parent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := person.ParseRelation(relation)
			if err != nil {
				return err
			}
			if strings.TrimSpace(flags.name) == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--name is required")
			}
			var draft person.Person
			if err := flags.apply(cmd, &draft); err != nil {
				return err
			}
			return c.runAdd(cmd.Context(), draft, rel, of)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&relation, "relation", "", "father, mother, spouse or child")
	cmd.Flags().StringVar(&of, "of", "", "id of the existing person")
	_ = cmd.MarkFlagRequired("relation")
	_ = cmd.MarkFlagRequired("of")
	return cmd
}

func (c *CLI) runAdd(ctx context.Context, draft person.Person, rel person.Relation, of string) error {
	return c.update(ctx, true, func(s *session) error {
		var id string
		err := c.spin(ctx, "Saving "+draft.DisplayName(), func() error {
			var err error
			id, err = s.coord.AddRelative(ctx, draft, rel, of)
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("Added %s as %s of %s", draft.DisplayName(), rel, of)
		printKeyValue("id", id)
		return nil
	})
}

// =============================================================================
// edit
// =============================================================================

func (c *CLI) editCommand() *cobra.Command {
	var flags personFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a person's details",
		Long:  `Edit updates only the fields given as flags and saves them to the backend.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flags.changed(cmd) {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to change")
			}
			return c.update(cmd.Context(), true, func(s *session) error {
				p, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				if err := flags.apply(cmd, &p); err != nil {
					return err
				}
				updated, err := s.coord.UpdatePerson(cmd.Context(), p)
				if err != nil {
					return err
				}
				printSuccess("Updated %s", updated.DisplayName())
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// =============================================================================
// avatar
// =============================================================================

func (c *CLI) avatarCommand() *cobra.Command {
	var cropped bool
	cmd := &cobra.Command{
		Use:   "avatar <id> <image>",
		Short: "Upload a profile picture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "open image")
			}
			defer f.Close()

			ctx := cmd.Context()
			return c.update(ctx, true, func(s *session) error {
				var p person.Person
				err := c.spin(ctx, "Uploading "+args[1], func() error {
					var err error
					p, err = s.coord.UploadAvatar(ctx, args[0], api.Upload{
						Filename: args[1],
						Content:  f,
						Cropped:  cropped,
					})
					return err
				})
				if err != nil {
					return err
				}
				printSuccess("Picture saved for %s", p.DisplayName())
				printDetail("%s", p.Data.Avatar)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&cropped, "cropped", false, "upload as an already cropped image")
	return cmd
}

// =============================================================================
// remove / clear
// =============================================================================

func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove people from the chart (the backend is not touched)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.update(cmd.Context(), false, func(s *session) error {
				for _, id := range args {
					if err := s.coord.Remove(id); err != nil {
						return err
					}
					printSuccess("Removed %s", id)
				}
				s.summary(cmd.Context())
				return nil
			})
		},
	}
}

func (c *CLI) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove everyone from the chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.update(cmd.Context(), false, func(s *session) error {
				n := s.size()
				s.coord.Clear()
				printSuccess("Cleared chart %s (%d people)", s.name, n)
				return nil
			})
		},
	}
}

// lookup returns a copy of id's record.
func lookup(s *session, id string) (person.Person, error) {
	var (
		p   person.Person
		err error
	)
	s.coord.View(func(ch *chart.Chart) { p, err = ch.Graph().Lookup(id) })
	return p, err
}
