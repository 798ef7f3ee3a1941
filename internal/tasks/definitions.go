package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	RegisterHandler(ExpireUserPackagesTask.TaskID(), ExpireUserPackagesTask.HandleExecution)
	RegisterHandler(ExpirePendingPaymentsTask.TaskID(), ExpirePendingPaymentsTask.HandleExecution)
}
