package conversion

// Task names linking the three-step job graph.
const (
	taskImport  = "import-file"
	taskConvert = "convert-file"
	taskExport  = "export-file"
)

// Job statuses reported by the provider.
const (
	statusFinished = "finished"
	statusError    = "error"
)

// envelope wraps every provider response body.
type envelope struct {
	Data job `json:"data"`
}

// job is the provider's view of a conversion job and its task graph.
type job struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Tasks   []task `json:"tasks"`
}

// task is a single step of the job graph.
type task struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Result  *taskResult `json:"result"`
}

// taskResult carries either an upload form (import tasks) or result files
// (export tasks).
type taskResult struct {
	Form  *uploadForm `json:"form"`
	Files []taskFile  `json:"files"`
}

// uploadForm is the presigned form the document bytes are posted to.
type uploadForm struct {
	URL        string            `json:"url"`
	Parameters map[string]string `json:"parameters"`
}

// taskFile is a downloadable result file.
type taskFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// findTask returns the named task, or nil.
func (j *job) findTask(name string) *task {
	for i := range j.Tasks {
		if j.Tasks[i].Name == name {
			return &j.Tasks[i]
		}
	}
	return nil
}

// errorMessage returns the most specific failure message: a failed task's
// message first, then the job-level message, then empty.
func (j *job) errorMessage() string {
	for i := range j.Tasks {
		if j.Tasks[i].Status == statusError && j.Tasks[i].Message != "" {
			return j.Tasks[i].Message
		}
	}
	return j.Message
}
