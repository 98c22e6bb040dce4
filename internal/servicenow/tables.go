package servicenow

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/elasticnow/elasticnow/internal/domain"
)

const (
	tablePath      = "/api/now/table/"
	stdChangePath  = "/api/sn_chg_rest/change/standard/"
	ticketPriority = "4"
	ticketSLAType  = "server_specific"
	ticketClass    = "sc_req_item"
	listLimit      = "250"
)

type sysIDResult struct {
	SysID string `json:"sys_id"`
}

type displayValue struct {
	DisplayValue string `json:"display_value"`
	Value        string `json:"value"`
}

// UserGroup returns the display name of a user's default assignment group.
func (c *Client) UserGroup(ctx context.Context, username string) (string, error) {
	q := url.Values{}
	q.Set("user_name", username)
	q.Set("sysparm_limit", "1")
	q.Set("sysparm_display_value", "true")
	q.Set("sysparm_exclude_reference_link", "true")
	q.Set("sysparm_fields", "u_default_group")

	var resp result[[]struct {
		DefaultGroup string `json:"u_default_group"`
	}]
	if err := c.get(ctx, "get_user_group", tablePath+"sys_user", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Result) == 0 {
		return "", &domain.BackendError{Service: serviceName, Op: "get_user_group", Err: fmt.Errorf("user %q not found", username)}
	}
	return resp.Result[0].DefaultGroup, nil
}

type ticketCreation struct {
	AssignmentGroup  string `json:"assignment_group"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	ClassName        string `json:"sys_class_name,omitempty"`
	Priority         string `json:"priority,omitempty"`
	SLAType          string `json:"u_sla_type,omitempty"`
}

// CreateTicket opens a requested item in bin and returns its sys_id.
func (c *Client) CreateTicket(ctx context.Context, bin, description string) (string, error) {
	body := ticketCreation{
		AssignmentGroup:  bin,
		ShortDescription: description,
		Description:      description,
		ClassName:        ticketClass,
		Priority:         ticketPriority,
		SLAType:          ticketSLAType,
	}
	var resp result[sysIDResult]
	if err := c.post(ctx, "create_ticket", tablePath+"sc_req_item", body, &resp); err != nil {
		return "", err
	}
	if resp.Result.SysID == "" {
		return "", &domain.BackendError{Service: serviceName, Op: "create_ticket", Err: fmt.Errorf("response carried no sys_id")}
	}
	return resp.Result.SysID, nil
}

// TicketsInBin lists the active tasks assigned to bin.
func (c *Client) TicketsInBin(ctx context.Context, bin string) ([]domain.Ticket, error) {
	q := url.Values{}
	q.Set("sysparm_query", fmt.Sprintf("assignment_group.name=%s^active=true^ORDERBYDESCsys_updated_on", bin))
	q.Set("sysparm_fields", "sys_id,number,short_description")
	q.Set("sysparm_exclude_reference_link", "true")
	q.Set("sysparm_limit", listLimit)

	var resp result[[]struct {
		SysID            string `json:"sys_id"`
		Number           string `json:"number"`
		ShortDescription string `json:"short_description"`
	}]
	if err := c.get(ctx, "list_bin_tickets", tablePath+"task", q, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Ticket, 0, len(resp.Result))
	for _, r := range resp.Result {
		out = append(out, domain.Ticket{ID: r.SysID, Number: r.Number, ShortDescription: r.ShortDescription})
	}
	return out, nil
}

type timeWorkedCreation struct {
	TimeWorked string `json:"time_worked"`
	Comments   string `json:"comments"`
	Task       string `json:"task,omitempty"`
	Category   string `json:"u_category,omitempty"`
}

// AddTimeToTicket records d against a ticket.
func (c *Client) AddTimeToTicket(ctx context.Context, ticketID string, d domain.Duration, comment string) error {
	body := timeWorkedCreation{TimeWorked: d.Encode(), Comments: comment, Task: ticketID}
	return c.post(ctx, "add_time_to_ticket", tablePath+"task_time_worked", body, nil)
}

// AddTimeToCategory records d against a no-ticket category.
func (c *Client) AddTimeToCategory(ctx context.Context, category string, d domain.Duration, comment string) error {
	body := timeWorkedCreation{TimeWorked: d.Encode(), Comments: comment, Category: category}
	return c.post(ctx, "add_time_to_category", tablePath+"task_time_worked", body, nil)
}

// SearchTemplates finds active standard change templates whose name
// contains name.
func (c *Client) SearchTemplates(ctx context.Context, name string) ([]domain.ChangeTemplate, error) {
	q := url.Values{}
	q.Set("sysparm_query", fmt.Sprintf("active=true^nameLIKE%s^ORDERBYname", name))
	q.Set("sysparm_fields", "sys_id,name")
	q.Set("sysparm_limit", listLimit)

	var resp result[[]struct {
		SysID string `json:"sys_id"`
		Name  string `json:"name"`
	}]
	if err := c.get(ctx, "search_templates", tablePath+"std_change_record_producer", q, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.ChangeTemplate, 0, len(resp.Result))
	for _, r := range resp.Result {
		out = append(out, domain.ChangeTemplate{ID: r.SysID, Name: r.Name})
	}
	return out, nil
}

// CreateChangeFromTemplate creates a standard change from a template and
// returns the new change request's sys_id.
func (c *Client) CreateChangeFromTemplate(ctx context.Context, templateID, bin string) (string, error) {
	body := map[string]string{"assignment_group": bin}
	var resp result[struct {
		SysID displayValue `json:"sys_id"`
	}]
	if err := c.post(ctx, "create_std_change", stdChangePath+url.PathEscape(templateID), body, &resp); err != nil {
		return "", err
	}
	if resp.Result.SysID.Value == "" {
		return "", &domain.BackendError{Service: serviceName, Op: "create_std_change", Err: fmt.Errorf("response carried no sys_id")}
	}
	return resp.Result.SysID.Value, nil
}

// TimeEntries returns the time-worked records user created within r.
func (c *Client) TimeEntries(ctx context.Context, r domain.DateRange, user string) ([]domain.TimeEntry, error) {
	q := url.Values{}
	q.Set("sysparm_query", fmt.Sprintf(
		"user.user_name=%s^sys_created_onBETWEENjavascript:gs.dateGenerate('%s','00:00:00')@javascript:gs.dateGenerate('%s','23:59:59')",
		user, padDate(r.Since), padDate(r.Until)))
	q.Set("sysparm_fields", "time_in_seconds,task,u_category")
	q.Set("sysparm_exclude_reference_link", "true")

	var resp result[[]struct {
		TimeInSeconds string `json:"time_in_seconds"`
		Task          string `json:"task"`
		Category      string `json:"u_category"`
	}]
	if err := c.get(ctx, "get_time_worked", tablePath+"task_time_worked", q, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(resp.Result))
	for _, row := range resp.Result {
		// Unparseable values count as zero.
		secs, _ := strconv.ParseInt(row.TimeInSeconds, 10, 64)
		out = append(out, domain.TimeEntry{Seconds: secs, TicketID: row.Task, Category: row.Category})
	}
	return out, nil
}

// CostCenters resolves every ticket id in one request. Tickets without a
// cost center are left out of the result.
func (c *Client) CostCenters(ctx context.Context, ticketIDs []string) ([]domain.CostCenter, error) {
	if len(ticketIDs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("sysparm_query", "sys_idIN"+strings.Join(ticketIDs, ","))
	q.Set("sysparm_fields", "sys_id,cost_center")
	q.Set("sysparm_display_value", "all")
	q.Set("sysparm_exclude_reference_link", "true")
	q.Set("sysparm_limit", strconv.Itoa(len(ticketIDs)))

	var resp result[[]struct {
		SysID      displayValue `json:"sys_id"`
		CostCenter displayValue `json:"cost_center"`
	}]
	if err := c.get(ctx, "get_cost_centers", tablePath+"task", q, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.CostCenter, 0, len(resp.Result))
	for _, r := range resp.Result {
		if r.CostCenter.DisplayValue == "" {
			continue
		}
		out = append(out, domain.CostCenter{TicketID: r.SysID.Value, Name: r.CostCenter.DisplayValue})
	}
	return out, nil
}

// padDate turns a validated YYYY-M-D bound into YYYY-MM-DD.
func padDate(s string) string {
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &y, &m, &d); err != nil {
		return s
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}
