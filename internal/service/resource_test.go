package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/domain/resource"
	apperrors "github.com/target/residence-console/internal/errors"
	"github.com/target/residence-console/internal/mocks"
	authmocks "github.com/target/residence-console/internal/mocks/auth"
	"github.com/target/residence-console/internal/observability/metrics"
	"github.com/target/residence-console/internal/ports"
)

var errUpstream = errors.New("upstream failed")

func usersDefinition(t *testing.T) resource.Definition {
	t.Helper()
	def, ok := resource.DefaultCatalog().Get(resource.Users)
	require.True(t, ok)
	return def
}

func fixedFactory(client ports.ResourceClient) ports.ResourceClientFactory {
	return ports.ResourceClientFactoryFunc(func(resource.Definition) ports.ResourceClient { return client })
}

func sampleRecords() []resource.Record {
	return []resource.Record{
		{ID: "1", View: map[string]string{"name": "A B", "email": "a@b.com"}, Fields: map[string]any{"firstName": "A"}},
		{ID: "2", View: map[string]string{"name": "Carla D", "email": "carla@example.com"}},
	}
}

var adminSession = &domainauth.Session{ID: "s1", UserID: "7", Email: "admin@example.com", Role: domainauth.RoleAdmin}

func TestResourceService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	client.EXPECT().ListAll(gomock.Any()).Return(sampleRecords(), nil).Times(3)

	svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client)})
	def := usersDefinition(t)
	ctx := context.Background()

	res, err := svc.List(ctx, def, "")
	require.NoError(t, err)
	assert.Equal(t, res.All, res.Visible)

	res, err = svc.List(ctx, def, "A@B")
	require.NoError(t, err)
	require.Len(t, res.Visible, 1)
	assert.Equal(t, "1", res.Visible[0].ID)
	assert.Len(t, res.All, 2)

	res, err = svc.List(ctx, def, "zzz")
	require.NoError(t, err)
	assert.Empty(t, res.Visible)
}

func TestResourceService_List_FetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	client.EXPECT().ListAll(gomock.Any()).Return(nil, errUpstream)

	svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client)})
	_, err := svc.List(context.Background(), usersDefinition(t), "")
	assert.ErrorIs(t, err, errUpstream)
}

func TestResourceService_Find(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	client.EXPECT().ListAll(gomock.Any()).Return(sampleRecords(), nil).Times(2)

	svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client)})
	def := usersDefinition(t)

	rec, err := svc.Find(context.Background(), def, "2")
	require.NoError(t, err)
	assert.Equal(t, "Carla D", rec.View["name"])

	_, err = svc.Find(context.Background(), def, "99")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestResourceService_Save_RoutesOnID(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		expect func(c *mocks.MockResourceClient)
		action ports.ActivityAction
	}{
		{
			name: "empty id creates",
			id:   "",
			expect: func(c *mocks.MockResourceClient) {
				c.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			action: ports.ActivityCreate,
		},
		{
			name: "blank id creates",
			id:   "   ",
			expect: func(c *mocks.MockResourceClient) {
				c.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			action: ports.ActivityCreate,
		},
		{
			name: "populated id updates",
			id:   "42",
			expect: func(c *mocks.MockResourceClient) {
				c.EXPECT().Update(gomock.Any(), "42", gomock.Any()).Return(nil)
			},
			action: ports.ActivityUpdate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockResourceClient(ctrl)
			tt.expect(client)

			activity := &authmocks.MemoryActivityRecorder{}
			svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client), Activity: activity})

			buf := resource.EditBuffer{ID: tt.id, Values: map[string]string{"email": "a@b.com"}}
			action, err := svc.Save(context.Background(), adminSession, usersDefinition(t), buf)
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)

			entries := activity.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.action, entries[0].Action)
			assert.Equal(t, "admin@example.com", entries[0].Actor)
			assert.Equal(t, "admin", entries[0].Role)
		})
	}
}

func TestResourceService_Save_Payload(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)

	var got map[string]any
	client.EXPECT().Update(gomock.Any(), "5", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, body map[string]any) error {
			got = body
			return nil
		})

	svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client)})
	buf := resource.EditBuffer{ID: "5", Values: map[string]string{"firstName": " Ada ", "password": ""}}
	_, err := svc.Save(context.Background(), adminSession, usersDefinition(t), buf)
	require.NoError(t, err)

	assert.Equal(t, "Ada", got["firstName"])
	assert.NotContains(t, got, "id")
	assert.NotContains(t, got, "password")
}

func TestResourceService_Save_ErrorKeepsActivityClean(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	client.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errUpstream)

	activity := &authmocks.MemoryActivityRecorder{}
	sink := &metrics.MemorySink{}
	svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client), Activity: activity, Metrics: sink})

	_, err := svc.Save(context.Background(), adminSession, usersDefinition(t), resource.EditBuffer{})
	assert.ErrorIs(t, err, errUpstream)
	assert.Empty(t, activity.Entries())
	assert.Empty(t, sink.Named("resource.mutation"))
}

func TestResourceService_Save_ActivityFailureIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	client.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	recorder := mocks.NewMockActivityRecorder(ctrl)
	recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client), Activity: recorder})
	_, err := svc.Save(context.Background(), adminSession, usersDefinition(t), resource.EditBuffer{})
	require.NoError(t, err)
}

func TestResourceService_Delete(t *testing.T) {
	t.Run("declined confirmation makes no call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)
		// No expectations: any call fails the test.

		svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client)})
		err := svc.Delete(context.Background(), adminSession, usersDefinition(t), "1", false)
		assert.ErrorIs(t, err, ErrDeleteNotConfirmed)
	})

	t.Run("confirmed delete calls the client", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)
		client.EXPECT().Delete(gomock.Any(), "1").Return(nil)

		activity := &authmocks.MemoryActivityRecorder{}
		sink := &metrics.MemorySink{}
		svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client), Activity: activity, Metrics: sink})
		require.NoError(t, svc.Delete(context.Background(), adminSession, usersDefinition(t), "1", true))

		entries := activity.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, ports.ActivityDelete, entries[0].Action)
		assert.Equal(t, "1", entries[0].RecordID)
		require.Len(t, sink.Named("resource.mutation"), 1)
	})

	t.Run("missing id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)

		svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client)})
		err := svc.Delete(context.Background(), adminSession, usersDefinition(t), "", true)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("client error is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)
		client.EXPECT().Delete(gomock.Any(), "1").Return(errUpstream)

		svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client)})
		err := svc.Delete(context.Background(), adminSession, usersDefinition(t), "1", true)
		assert.ErrorIs(t, err, errUpstream)
	})
}

func TestResourceService_SignUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	client.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	activity := &authmocks.MemoryActivityRecorder{}
	svc := NewResourceService(ResourceServiceOptions{Clients: fixedFactory(client), Activity: activity})
	def := usersDefinition(t)

	err := svc.SignUp(context.Background(), def, resource.EditBuffer{Values: map[string]string{"email": "n@x.io"}})
	assert.Equal(t, "password", apperrors.GetField(err))

	err = svc.SignUp(context.Background(), def, resource.EditBuffer{ID: "1", Values: map[string]string{"password": "x"}})
	assert.True(t, apperrors.IsValidation(err))

	err = svc.SignUp(context.Background(), def, resource.EditBuffer{Values: map[string]string{"email": "n@x.io", "password": "pw"}})
	require.NoError(t, err)
	require.Len(t, activity.Entries(), 1)
	assert.Equal(t, "signup", activity.Entries()[0].Actor)
}

func TestNewResourceService_RequiresFactory(t *testing.T) {
	assert.Panics(t, func() { NewResourceService(ResourceServiceOptions{}) })
}
