package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deskhand/deskhand/internal/gateway"
	"github.com/deskhand/deskhand/internal/logger"
	"github.com/deskhand/deskhand/internal/render"
	"github.com/deskhand/deskhand/internal/ticket"
)

func newTicketCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Work with support tickets",
	}
	cmd.AddCommand(
		newTicketListCmd(a),
		newTicketShowCmd(a),
		newTicketCreateCmd(a),
		newTicketUpdateCmd(a),
		newTicketCommentCmd(a),
		newTicketActivitiesCmd(a),
	)
	return cmd
}

func parseSeqNo(arg string) (int, error) {
	seqNo, err := strconv.Atoi(arg)
	if err != nil || seqNo <= 0 {
		return 0, fmt.Errorf("invalid ticket id %q", arg)
	}
	return seqNo, nil
}

func newTicketListCmd(a *app) *cobra.Command {
	var status string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			tickets, err := gw.ListTickets(cmd.Context(), status, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return render.JSON(cmd.OutOrStdout(), render.NewTicketListJSON(tickets))
			}
			render.TicketTable(cmd.OutOrStdout(), tickets)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of tickets")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func newTicketShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one ticket with members and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqNo, err := parseSeqNo(args[0])
			if err != nil {
				return err
			}
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			t, err := gw.FetchTicket(cmd.Context(), seqNo, ticket.FetchOptions{
				IncludeComments: true,
				IncludeMembers:  true,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return render.JSON(cmd.OutOrStdout(), render.NewTicketJSON(t))
			}
			render.TicketDetail(cmd.OutOrStdout(), t)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func newTicketCreateCmd(a *app) *cobra.Command {
	var draft gateway.TicketDraft

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ticket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(draft.Subject) == "" {
				return fmt.Errorf("--subject is required")
			}
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			draft.Description = a.resolveMentions(draft.Description)
			t, err := gw.CreateTicket(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created ticket #%d\n", t.SeqNo)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Subject, "subject", "", "ticket subject")
	cmd.Flags().StringVar(&draft.Description, "description", "", "ticket description")
	cmd.Flags().StringVar(&draft.Priority, "priority", "", "ticket priority")
	cmd.Flags().StringVar(&draft.Category, "category", "", "ticket category")
	return cmd
}

func newTicketUpdateCmd(a *app) *cobra.Command {
	var subject, status, priority string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update ticket fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqNo, err := parseSeqNo(args[0])
			if err != nil {
				return err
			}

			var patch gateway.TicketPatch
			if cmd.Flags().Changed("subject") {
				patch.Subject = &subject
			}
			if cmd.Flags().Changed("status") {
				patch.Status = &status
			}
			if cmd.Flags().Changed("priority") {
				patch.Priority = &priority
			}
			if patch.Subject == nil && patch.Status == nil && patch.Priority == nil {
				return fmt.Errorf("nothing to update; pass --subject, --status, or --priority")
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			t, err := gw.UpdateTicket(cmd.Context(), seqNo, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated ticket #%d\n", t.SeqNo)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "new subject")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	return cmd
}

func newTicketCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <text>...",
		Short: "Add a comment to a ticket",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqNo, err := parseSeqNo(args[0])
			if err != nil {
				return err
			}
			text := a.resolveMentions(strings.Join(args[1:], " "))
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			if err := gw.AddComment(cmd.Context(), seqNo, text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Commented on ticket #%d\n", seqNo)
			return nil
		},
	}
}

func newTicketActivitiesCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "activities <id>",
		Short: "Show the aggregated communication history of a ticket",
		Long: `Fetch the ticket, follow its activity links, expand email conversations
into their individual mails, and print everything sorted by time, followed
by the ticket's comments. Email bodies are fetched and converted to plain
text; a body that cannot be loaded is left empty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seqNo, err := parseSeqNo(args[0])
			if err != nil {
				return err
			}
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			hist, err := ticket.NewAggregator(logger.L, gw).History(cmd.Context(), seqNo)
			if err != nil {
				return err
			}
			if asJSON {
				return render.JSON(cmd.OutOrStdout(), render.NewHistoryJSON(hist))
			}
			render.ActivityReport(cmd.OutOrStdout(), hist)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

// resolveMentions replaces @alias tokens with the address stored in the
// alias table; unknown aliases are left as typed.
func (a *app) resolveMentions(text string) string {
	if len(a.cfg.Aliases) == 0 || !strings.Contains(text, "@") {
		return text
	}
	fields := strings.Fields(text)
	for i, f := range fields {
		name, ok := strings.CutPrefix(f, "@")
		if !ok {
			continue
		}
		if addr, ok := a.cfg.Aliases[name]; ok {
			fields[i] = addr
		}
	}
	return strings.Join(fields, " ")
}
