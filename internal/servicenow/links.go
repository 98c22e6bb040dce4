package servicenow

import "fmt"

// InstanceURL returns the hosted URL of a named instance.
func InstanceURL(instance string) string {
	return fmt.Sprintf("https://%s.service-now.com", instance)
}

// TaskLink links to any task record.
func TaskLink(instance, sysID string) string {
	return fmt.Sprintf("%s/task.do?sys_id=%s", InstanceURL(instance), sysID)
}

// RequestItemLink links to a requested item created by CreateTicket.
func RequestItemLink(instance, sysID string) string {
	return fmt.Sprintf("%s/sc_req_item.do?sys_id=%s", InstanceURL(instance), sysID)
}

// ChangeLink links to a change request.
func ChangeLink(instance, sysID string) string {
	return fmt.Sprintf("%s/change_request.do?sys_id=%s", InstanceURL(instance), sysID)
}
