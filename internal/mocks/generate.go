// Package mocks provides gomock implementations of the console ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockResourceClient(ctrl)
//	client.EXPECT().ListAll(gomock.Any()).Return(records, nil)
package mocks

// ResourceClient: ListAll, Create, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=resource_client_mock.go github.com/target/residence-console/internal/ports ResourceClient

// ActivityRecorder: Record, List
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=activity_recorder_mock.go github.com/target/residence-console/internal/ports ActivityRecorder
