package config

type WorkerKeyStruct struct {
	ModuleViewsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ModuleViewsQueue: "module_views_queue",
}
